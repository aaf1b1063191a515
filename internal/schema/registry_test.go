package schema

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, _, err := NewDefaultRegistry(DefaultPolicy())
	require.NoError(t, err)
	return reg
}

func mustAT(t *testing.T, text string) *AttributeType {
	t.Helper()
	at, err := ParseAttributeType(text, ParseOptions{AllowOperational: true})
	require.NoError(t, err)
	return at
}

func mustOC(t *testing.T, text string) *ObjectClass {
	t.Helper()
	oc, err := ParseObjectClass(text, ParseOptions{})
	require.NoError(t, err)
	return oc
}

func TestRegistryDuplicateOID(t *testing.T) {
	reg := newTestRegistry(t)

	require.NoError(t, reg.InsertAttributeType(mustAT(t, `( 1.2.3 NAME 'a' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )`)))

	err := reg.InsertAttributeType(mustAT(t, `( 1.2.3 NAME 'b' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )`))
	assert.ErrorIs(t, err, ErrDuplicateAttributeType)
	assert.Equal(t, "1.2.3", TokenOf(err))

	_, ok := reg.AttributeType("b")
	assert.False(t, ok)
}

func TestRegistryDuplicateName(t *testing.T) {
	reg := newTestRegistry(t)

	err := reg.InsertAttributeType(mustAT(t, `( 1.2.4 NAME 'CN' SUP name )`))
	assert.Equal(t, CodeDuplicateAttributeType, CodeOf(err))
	assert.Equal(t, "CN", TokenOf(err))

	err = reg.InsertAttributeType(&AttributeType{OID: "1.2.5", Names: []string{"twice", "TWICE"}, Syntax: SyntaxDirectoryString})
	assert.Equal(t, CodeDuplicateAttributeType, CodeOf(err))

	err = reg.InsertObjectClass(mustOC(t, `( 1.2.6 NAME 'Person' SUP top )`))
	assert.Equal(t, CodeDuplicateObjectClass, CodeOf(err))
}

func TestRegistryOIDChecksComeFirst(t *testing.T) {
	reg := newTestRegistry(t)

	// Empty OID and a taken name: the OID check wins.
	err := reg.InsertAttributeType(&AttributeType{Names: []string{"cn"}, Syntax: SyntaxDirectoryString})
	assert.Equal(t, CodeOIDOrNameRequired, CodeOf(err))

	err = reg.InsertObjectClass(&ObjectClass{Names: []string{"person"}})
	assert.Equal(t, CodeOIDOrNameRequired, CodeOf(err))

	err = reg.InsertAttributeType(&AttributeType{OID: "myOrg:1", Syntax: SyntaxDirectoryString})
	assert.Equal(t, CodeOIDNotExpanded, CodeOf(err))

	err = reg.InsertAttributeType(&AttributeType{OID: "1.2.3"})
	assert.Equal(t, CodeAttributeTypeIncomplete, CodeOf(err))
}

func TestRegistryMissingOIDVersusDuplicate(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := ParseAttributeType(`( NAME 'x' SYNTAX 1.2 )`, ParseOptions{})
	parseCode := CodeOf(err)

	err = reg.InsertAttributeType(mustAT(t, `( 2.5.4.3 NAME 'x' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )`))
	insertCode := CodeOf(err)

	assert.Equal(t, CodeMissingOID, parseCode)
	assert.Equal(t, CodeDuplicateAttributeType, insertCode)
	assert.NotEqual(t, parseCode, insertCode)
}

func TestRegistrySuperiorNotFoundThenInherited(t *testing.T) {
	reg := newTestRegistry(t)
	before := reg.Len()

	child := mustAT(t, `( 1.9.2 NAME 'badgeLabel' SUP badgeBase SINGLE-VALUE )`)
	err := reg.InsertAttributeType(child)
	assert.Equal(t, CodeAttributeTypeNotFound, CodeOf(err))
	assert.Equal(t, "badgeBase", TokenOf(err))
	assert.Equal(t, before, reg.Len(), "failed insert must not commit")

	require.NoError(t, reg.InsertAttributeType(mustAT(t,
		`( 1.9.1 NAME 'badgeBase' EQUALITY caseIgnoreMatch SUBSTR caseIgnoreSubstringsMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.15{64} )`)))
	require.NoError(t, reg.InsertAttributeType(child))

	got, ok := reg.AttributeType("badgelabel")
	require.True(t, ok)
	assert.Equal(t, "badgeBase", got.Superior)
	assert.Equal(t, SyntaxDirectoryString, got.Syntax)
	assert.Equal(t, 64, got.SyntaxLen)
	assert.Equal(t, "caseIgnoreMatch", got.Equality)
	assert.Equal(t, "caseIgnoreSubstringsMatch", got.Substring)
	assert.True(t, got.SingleValue)

	// The caller's value is left untouched.
	assert.Empty(t, child.Syntax)
}

func TestRegistryAttributeTypeErrors(t *testing.T) {
	tests := []struct {
		name      string
		setup     []string
		at        *AttributeType
		wantCode  Code
		wantToken string
	}{
		{
			name:      "written usage differs from superior",
			at:        &AttributeType{OID: "1.9.1", Names: []string{"stamp"}, Superior: "createTimestamp", usageSet: true},
			wantCode:  CodeAttributeTypeBadSuperior,
			wantToken: "createTimestamp",
		},
		{
			name:      "operational usage differs from superior",
			at:        &AttributeType{OID: "1.9.1", Superior: "createTimestamp", Usage: DSAOperation},
			wantCode:  CodeAttributeTypeBadSuperior,
			wantToken: "createTimestamp",
		},
		{
			name:      "user definition may not inherit operational usage",
			at:        &AttributeType{OID: "1.9.1", Superior: "createTimestamp", userOnly: true},
			wantCode:  CodeAttributeTypeBadUsage,
			wantToken: "directoryOperation",
		},
		{
			name:      "child of collective superior must be collective",
			setup:     []string{`( 1.9.0 NAME 'c-base' SUP name COLLECTIVE )`},
			at:        &AttributeType{OID: "1.9.1", Superior: "c-base"},
			wantCode:  CodeAttributeTypeBadSuperior,
			wantToken: "c-base",
		},
		{
			name:      "leading zero oid",
			at:        &AttributeType{OID: "01.2", Syntax: SyntaxDirectoryString},
			wantCode:  CodeOIDNotExpanded,
			wantToken: "01.2",
		},
		{
			name:      "own superior",
			at:        &AttributeType{OID: "1.9.1", Names: []string{"selfy"}, Superior: "selfy"},
			wantCode:  CodeAttributeTypeBadSuperior,
			wantToken: "selfy",
		},
		{
			name:      "unknown matching rule",
			at:        &AttributeType{OID: "1.9.1", Equality: "fuzzyMatch", Syntax: SyntaxDirectoryString},
			wantCode:  CodeMatchingRuleNotFound,
			wantToken: "fuzzyMatch",
		},
		{
			name:      "unknown syntax",
			at:        &AttributeType{OID: "1.9.1", Syntax: "1.2.3.4"},
			wantCode:  CodeSyntaxNotFound,
			wantToken: "1.2.3.4",
		},
		{
			name:      "superior checked before matching rules",
			at:        &AttributeType{OID: "1.9.1", Superior: "nothing", Equality: "fuzzyMatch"},
			wantCode:  CodeAttributeTypeNotFound,
			wantToken: "nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			for _, text := range tt.setup {
				require.NoError(t, reg.InsertAttributeType(mustAT(t, text)))
			}
			err := reg.InsertAttributeType(tt.at)
			assert.Equal(t, tt.wantCode, CodeOf(err), err)
			if tt.wantToken != "" {
				assert.Equal(t, tt.wantToken, TokenOf(err))
			}
			_, stored := reg.AttributeType(tt.at.OID)
			assert.False(t, stored)
		})
	}
}

func TestRegistryAttributeTypeSuperiorRules(t *testing.T) {
	tests := []struct {
		name           string
		setup          []string
		text           string
		opts           ParseOptions
		wantUsage      AttributeUsage
		wantCollective bool
	}{
		{
			name:           "collective child of plain superior",
			text:           `( 2.5.4.7.1 NAME 'c-l' SUP l COLLECTIVE )`,
			wantUsage:      UserApplications,
			wantCollective: true,
		},
		{
			name:           "collective child of collective superior",
			setup:          []string{`( 1.9.0 NAME 'c-base' SUP name COLLECTIVE )`},
			text:           `( 1.9.1 NAME 'c-child' SUP c-base COLLECTIVE )`,
			wantUsage:      UserApplications,
			wantCollective: true,
		},
		{
			name:      "usage inherited from operational superior",
			setup:     []string{`( 1.9.0 NAME 'opSup' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 USAGE dSAOperation )`},
			text:      `( 1.9.1 NAME 'opChild' SUP opSup )`,
			opts:      ParseOptions{AllowOperational: true},
			wantUsage: DSAOperation,
		},
		{
			name:      "written usage matching superior",
			text:      `( 1.9.1 NAME 'stamp' SUP createTimestamp USAGE directoryOperation )`,
			opts:      ParseOptions{AllowOperational: true},
			wantUsage: DirectoryOperation,
		},
		{
			name:      "written default usage under user superior",
			text:      `( 1.9.1 NAME 'label' SUP name USAGE userApplications )`,
			wantUsage: UserApplications,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			for _, text := range tt.setup {
				require.NoError(t, reg.InsertAttributeType(mustAT(t, text)))
			}
			at, err := ParseAttributeType(tt.text, tt.opts)
			require.NoError(t, err)
			require.NoError(t, reg.InsertAttributeType(at))

			got, ok := reg.AttributeType(at.OID)
			require.True(t, ok)
			assert.Equal(t, tt.wantUsage, got.Usage)
			assert.Equal(t, tt.wantCollective, got.Collective)
		})
	}
}

func TestRegistryOperationalSuperiorFromUserPath(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.InsertAttributeType(mustAT(t,
		`( 1.9.0 NAME 'opSup' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 USAGE dSAOperation )`)))

	child, err := ParseAttributeType(`( 1.9.1 NAME 'opChild' SUP opSup )`, ParseOptions{})
	require.NoError(t, err)
	err = reg.InsertAttributeType(child)
	assert.Equal(t, CodeAttributeTypeBadUsage, CodeOf(err), err)
	assert.Equal(t, "dSAOperation", TokenOf(err))
}

func TestRegistryObjectClassErrors(t *testing.T) {
	tests := []struct {
		name      string
		oc        string
		wantCode  Code
		wantToken string
	}{
		{name: "unknown superior", oc: `( 1.9.1 NAME 'x' SUP nothing )`, wantCode: CodeObjectClassNotFound, wantToken: "nothing"},
		{name: "unknown must", oc: `( 1.9.1 NAME 'x' SUP top MUST nosuchAttr )`, wantCode: CodeAttributeTypeNotFound, wantToken: "nosuchAttr"},
		{name: "unknown may", oc: `( 1.9.1 NAME 'x' SUP top MAY ( cn $ nosuchAttr ) )`, wantCode: CodeAttributeTypeNotFound, wantToken: "nosuchAttr"},
		{name: "operational attribute", oc: `( 1.9.1 NAME 'x' SUP top MAY createTimestamp )`, wantCode: CodeObjectClassOperational, wantToken: "createTimestamp"},
		{name: "operational superior", oc: `( 1.9.1 NAME 'x' SUP subschema AUXILIARY )`, wantCode: CodeObjectClassBadSuperior, wantToken: "subschema"},
		{name: "abstract under structural", oc: `( 1.9.1 NAME 'x' SUP person ABSTRACT )`, wantCode: CodeObjectClassBadSuperior, wantToken: "person"},
		{name: "auxiliary under structural", oc: `( 1.9.1 NAME 'x' SUP person AUXILIARY )`, wantCode: CodeObjectClassBadSuperior, wantToken: "person"},
		{name: "structural under auxiliary", oc: `( 1.9.1 NAME 'x' SUP dcObject STRUCTURAL )`, wantCode: CodeObjectClassBadSuperior, wantToken: "dcObject"},
		{name: "own superior", oc: `( 1.9.1 NAME 'x' SUP x )`, wantCode: CodeObjectClassBadSuperior, wantToken: "x"},
		{name: "superior checked before attributes", oc: `( 1.9.1 NAME 'x' SUP nothing MUST nosuchAttr )`, wantCode: CodeObjectClassNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t)
			err := reg.InsertObjectClass(mustOC(t, tt.oc))
			assert.Equal(t, tt.wantCode, CodeOf(err), err)
			if tt.wantToken != "" {
				assert.Equal(t, tt.wantToken, TokenOf(err))
			}
		})
	}
}

func TestRegistryLenientSuperiorKinds(t *testing.T) {
	reg, _, err := NewDefaultRegistry(Policy{StrictSuperiorKinds: false})
	require.NoError(t, err)

	assert.NoError(t, reg.InsertObjectClass(mustOC(t, `( 1.9.1 NAME 'personExtras' SUP person AUXILIARY MAY mail )`)))
}

func TestRegistryEffectiveAttributes(t *testing.T) {
	reg := newTestRegistry(t)

	person, ok := reg.ObjectClass("person")
	require.True(t, ok)
	assert.Equal(t, []string{"2.5.4.0", "2.5.4.4", "2.5.4.3"}, person.EffectiveMust)
	assert.Equal(t, []string{"2.5.4.35", "2.5.4.20", "2.5.4.34", "2.5.4.13"}, person.EffectiveMay)

	inet, ok := reg.ObjectClass("2.16.840.1.113730.3.2.2")
	require.True(t, ok)
	assert.Equal(t, []string{"2.5.4.0", "2.5.4.4", "2.5.4.3"}, inet.EffectiveMust)
	assert.True(t, inet.Allows("0.9.2342.19200300.100.1.3"), "mail")
	assert.True(t, inet.Allows("2.5.4.12"), "title from organizationalPerson")
	assert.True(t, inet.Requires("2.5.4.3"))
	assert.NotContains(t, inet.EffectiveMay, "2.5.4.3")

	// MAY entries already required by a superior are dropped.
	require.NoError(t, reg.InsertObjectClass(mustOC(t, `( 1.9.1 NAME 'nick' SUP person MAY ( cn $ displayName ) )`)))
	nick, _ := reg.ObjectClass("nick")
	assert.NotContains(t, nick.EffectiveMay, "2.5.4.3")
	assert.Contains(t, nick.EffectiveMay, "2.16.840.1.113730.3.1.241")
}

func TestRegistrySealed(t *testing.T) {
	reg := newTestRegistry(t)
	assert.False(t, reg.Sealed())

	reg.Seal()
	assert.True(t, reg.Sealed())

	err := reg.InsertAttributeType(mustAT(t, `( 1.9.1 NAME 'late' SUP name )`))
	assert.ErrorIs(t, err, ErrRegistrySealed)
	err = reg.InsertObjectClass(mustOC(t, `( 1.9.2 NAME 'late' SUP top )`))
	assert.ErrorIs(t, err, ErrRegistrySealed)
}

func TestRegistryMaxDefinitions(t *testing.T) {
	reg := NewRegistry(DefaultCatalog(), Policy{MaxDefinitions: 1})

	require.NoError(t, reg.InsertAttributeType(&AttributeType{OID: "1.1", Syntax: SyntaxDirectoryString}))
	err := reg.InsertAttributeType(&AttributeType{OID: "1.2", Syntax: SyntaxDirectoryString})
	assert.Equal(t, CodeOutOfMemory, CodeOf(err))
	assert.True(t, CodeOf(err).Fatal())
}

func TestRegistryLookupsReturnCopies(t *testing.T) {
	reg := newTestRegistry(t)

	oc, ok := reg.ObjectClass("PERSON")
	require.True(t, ok)
	oc.Names[0] = "mutated"
	oc.EffectiveMust = nil

	again, _ := reg.ObjectClass("person")
	assert.Equal(t, "person", again.Name())
	assert.NotEmpty(t, again.EffectiveMust)

	all := reg.AttributeTypes()
	all[0].Names = nil
	first, _ := reg.AttributeType(all[0].OID)
	assert.NotEmpty(t, first.Names)
}

func TestRegistryInsertionOrder(t *testing.T) {
	reg := newTestRegistry(t)

	ocs := reg.ObjectClasses()
	require.NotEmpty(t, ocs)
	assert.Equal(t, "top", ocs[0].Name())
	assert.Equal(t, len(ocs), reg.NumObjectClasses())
	assert.Equal(t, len(defaultObjectClasses), reg.NumObjectClasses())
	assert.Equal(t, len(defaultAttributeTypes), reg.NumAttributeTypes())
	assert.Equal(t, reg.NumObjectClasses()+reg.NumAttributeTypes(), reg.Len())
}

func TestRegistryConcurrentReaders(t *testing.T) {
	reg := newTestRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = reg.ObjectClass("person")
				_, _ = reg.AttributeType("cn")
				_ = reg.Len()
			}
		}()
	}
	for i := 0; i < 20; i++ {
		at := &AttributeType{OID: fmt.Sprintf("1.9.%d", i), Superior: "name"}
		require.NoError(t, reg.InsertAttributeType(at))
	}
	wg.Wait()
	assert.Equal(t, len(defaultAttributeTypes)+20, reg.NumAttributeTypes())
}
