package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	reg := newTestRegistry(t)
	reg.Seal()
	return NewValidator(reg)
}

func entryOf(attrs map[string][]string) *Entry {
	e := NewEntry("cn=test,dc=example,dc=com")
	for k, v := range attrs {
		e.SetStringAttribute(k, v...)
	}
	return e
}

func violationOf(t *testing.T, err error) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	return ve
}

func TestValidateEntry(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name     string
		attrs    map[string][]string
		wantOK   bool
		wantKind Violation
		wantAttr string
	}{
		{
			name:   "valid person",
			attrs:  map[string][]string{"objectClass": {"top", "person"}, "cn": {"Alice"}, "sn": {"Smith"}},
			wantOK: true,
		},
		{
			name:   "aliases and case",
			attrs:  map[string][]string{"OBJECTCLASS": {"Person"}, "commonName": {"Alice"}, "surname": {"Smith"}},
			wantOK: true,
		},
		{
			name:     "no objectClass",
			attrs:    map[string][]string{"cn": {"Alice"}},
			wantKind: ViolationObjectClass,
		},
		{
			name:     "unknown class",
			attrs:    map[string][]string{"objectClass": {"wizard"}},
			wantKind: ViolationObjectClass,
			wantAttr: "wizard",
		},
		{
			name:     "missing must",
			attrs:    map[string][]string{"objectClass": {"person"}, "cn": {"Alice"}},
			wantKind: ViolationMissingAttribute,
			wantAttr: "sn",
		},
		{
			name:     "not allowed",
			attrs:    map[string][]string{"objectClass": {"person"}, "cn": {"Alice"}, "sn": {"Smith"}, "mail": {"a@example.com"}},
			wantKind: ViolationUndefinedAttribute,
			wantAttr: "mail",
		},
		{
			name:     "undefined attribute",
			attrs:    map[string][]string{"objectClass": {"person"}, "cn": {"Alice"}, "sn": {"Smith"}, "shoeSize": {"9"}},
			wantKind: ViolationUndefinedAttribute,
			wantAttr: "shoeSize",
		},
		{
			name:   "extensibleObject allows any defined attribute",
			attrs:  map[string][]string{"objectClass": {"person", "extensibleObject"}, "cn": {"Alice"}, "sn": {"Smith"}, "mail": {"a@example.com"}},
			wantOK: true,
		},
		{
			name:   "operational attributes always allowed",
			attrs:  map[string][]string{"objectClass": {"person"}, "cn": {"Alice"}, "sn": {"Smith"}, "createTimestamp": {"20240101120000Z"}},
			wantOK: true,
		},
		{
			name:     "single value",
			attrs:    map[string][]string{"objectClass": {"inetOrgPerson"}, "cn": {"Alice"}, "sn": {"Smith"}, "displayName": {"A", "B"}},
			wantKind: ViolationSingleValue,
			wantAttr: "displayName",
		},
		{
			name: "integer syntax",
			attrs: map[string][]string{
				"objectClass": {"account", "posixAccount"}, "uid": {"alice"}, "cn": {"Alice"},
				"uidNumber": {"abc"}, "gidNumber": {"100"}, "homeDirectory": {"/home/alice"},
			},
			wantKind: ViolationInvalidSyntax,
			wantAttr: "uidNumber",
		},
		{
			name:     "length bound",
			attrs:    map[string][]string{"objectClass": {"person"}, "cn": {"Alice"}, "sn": {"Smith"}, "telephoneNumber": {strings.Repeat("1", 33)}},
			wantKind: ViolationInvalidSyntax,
			wantAttr: "telephoneNumber",
		},
		{
			name:   "structural chain counts once",
			attrs:  map[string][]string{"objectClass": {"person", "organizationalPerson", "inetOrgPerson"}, "cn": {"Alice"}, "sn": {"Smith"}},
			wantOK: true,
		},
		{
			name:     "two unrelated structural classes",
			attrs:    map[string][]string{"objectClass": {"person", "organization"}, "cn": {"Alice"}, "sn": {"Smith"}, "o": {"Acme"}},
			wantKind: ViolationObjectClass,
		},
		{
			name:     "no structural class",
			attrs:    map[string][]string{"objectClass": {"dcObject"}, "dc": {"example"}},
			wantKind: ViolationObjectClass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEntry(entryOf(tt.attrs))
			if tt.wantOK {
				assert.NoError(t, err)
				return
			}
			ve := violationOf(t, err)
			assert.Equal(t, tt.wantKind, ve.Violation, ve.Error())
			if tt.wantAttr != "" {
				assert.Equal(t, tt.wantAttr, ve.Attr)
			}
		})
	}
}

func TestValidateEntryNil(t *testing.T) {
	v := newTestValidator(t)
	ve := violationOf(t, v.ValidateEntry(nil))
	assert.Equal(t, ViolationObjectClass, ve.Violation)
}

func TestValidateModification(t *testing.T) {
	v := newTestValidator(t)
	base := entryOf(map[string][]string{
		"objectClass": {"inetOrgPerson"},
		"cn":          {"Alice"},
		"sn":          {"Smith"},
	})

	tests := []struct {
		name     string
		mods     []Modification
		wantOK   bool
		wantKind Violation
	}{
		{
			name:   "add allowed attribute",
			mods:   []Modification{NewStringModification(ModAdd, "mail", "alice@example.com")},
			wantOK: true,
		},
		{
			name:   "add value under alias",
			mods:   []Modification{NewStringModification(ModAdd, "commonName", "Al")},
			wantOK: true,
		},
		{
			name:     "read-only attribute",
			mods:     []Modification{NewStringModification(ModReplace, "createTimestamp", "20240101120000Z")},
			wantKind: ViolationNoUserModification,
		},
		{
			name:     "delete required attribute",
			mods:     []Modification{NewStringModification(ModDelete, "sn")},
			wantKind: ViolationMissingAttribute,
		},
		{
			name:     "delete last value",
			mods:     []Modification{NewStringModification(ModDelete, "sn", "Smith")},
			wantKind: ViolationMissingAttribute,
		},
		{
			name:     "replace single value with two",
			mods:     []Modification{NewStringModification(ModReplace, "displayName", "A", "B")},
			wantKind: ViolationSingleValue,
		},
		{
			name:     "undefined attribute",
			mods:     []Modification{NewStringModification(ModAdd, "shoeSize", "9")},
			wantKind: ViolationUndefinedAttribute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateModification(base, tt.mods)
			if tt.wantOK {
				assert.NoError(t, err)
				return
			}
			ve := violationOf(t, err)
			assert.Equal(t, tt.wantKind, ve.Violation, ve.Error())
		})
	}

	// The original entry is not modified.
	assert.Equal(t, []string{"Smith"}, base.GetAll("sn"))
	assert.Nil(t, base.GetAll("mail"))
}
