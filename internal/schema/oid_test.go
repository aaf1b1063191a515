package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidDescriptor(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"cn", true},
		{"2cn", false},
		{"", false},
		{"my-Attr1", true},
		{"my_attr", false},
		{"a", true},
		{"-a", false},
		{"a b", false},
		{"x-", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidDescriptor(tt.in))
		})
	}
}

func TestIsNumericOID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2.5.4.3", true},
		{"1", true},
		{"0.9.2342.19200300.100.1.1", true},
		{"", false},
		{".1", false},
		{"1.", false},
		{"1..2", false},
		{"1.a", false},
		{"cn", false},
		{"0", true},
		{"1.0.3", true},
		{"01.2", false},
		{"1.02", false},
		{"1.2.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNumericOID(tt.in))
		})
	}
}

func newTestMacros(t *testing.T) *MacroTable {
	t.Helper()
	m := NewMacroTable()
	require.NoError(t, m.Define("myOrg", "1.3.6.1.4.1.9999"))
	return m
}

func TestResolveOID(t *testing.T) {
	macros := newTestMacros(t)

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{name: "macro with suffix", token: "myOrg:1.1", want: "1.3.6.1.4.1.9999.1.1"},
		{name: "longer name is not a prefix match", token: "myOrgExtra:1", wantErr: true},
		{name: "numeric passthrough", token: "2.5.4.3", want: "2.5.4.3"},
		{name: "bare macro", token: "myOrg", want: "1.3.6.1.4.1.9999"},
		{name: "empty suffix", token: "myOrg:", want: "1.3.6.1.4.1.9999"},
		{name: "non-numeric suffix", token: "myOrg:x", wantErr: true},
		{name: "suffix with empty component", token: "myOrg:1..2", wantErr: true},
		{name: "unknown macro", token: "other:1", wantErr: true},
		{name: "case sensitive", token: "myorg:1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOID(tt.token, macros)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, CodeOIDNotExpanded, CodeOf(err))
				assert.Equal(t, tt.token, TokenOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveOIDNilTable(t *testing.T) {
	got, err := ResolveOID("1.2.3", nil)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", got)

	_, err = ResolveOID("myOrg:1", nil)
	assert.True(t, errors.Is(err, ErrOIDNotExpanded))
}

func TestMacroTableDefine(t *testing.T) {
	m := newTestMacros(t)

	require.NoError(t, m.Define("myAttrs", "myOrg:2"))
	oid, ok := m.Lookup("myAttrs")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1.4.1.9999.2", oid)

	err := m.Define("myOrg", "1.2.3")
	assert.ErrorIs(t, err, ErrMacroDefined)

	err = m.Define("1bad", "1.2.3")
	assert.Equal(t, CodeInvalidName, CodeOf(err))

	err = m.Define("dangling", "nowhere:1")
	assert.Equal(t, CodeOIDNotExpanded, CodeOf(err))

	assert.Equal(t, []string{"myOrg", "myAttrs"}, m.Names())
	assert.Equal(t, 2, m.Len())
}

func TestMacroTableClone(t *testing.T) {
	m := newTestMacros(t)
	snap := m.Clone()

	require.NoError(t, m.Define("later", "1.9"))

	_, ok := snap.Lookup("later")
	assert.False(t, ok, "snapshot must not see later definitions")
	_, ok = snap.Lookup("myOrg")
	assert.True(t, ok)
}

func TestResolveWoid(t *testing.T) {
	macros := newTestMacros(t)

	got, err := resolveWoid("cn", macros)
	require.NoError(t, err)
	assert.Equal(t, "cn", got)

	got, err = resolveWoid("myOrg:3", macros)
	require.NoError(t, err)
	assert.Equal(t, "1.3.6.1.4.1.9999.3", got)

	_, err = resolveWoid("bad_name", macros)
	assert.Equal(t, CodeInvalidName, CodeOf(err))
}
