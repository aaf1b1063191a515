package schemafile

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `# Example schema
# with a header comment

objectidentifier myOrg 1.3.6.1.4.1.9999
objectIdentifier myAttrs myOrg:1

attributetype ( myAttrs:1 NAME 'badgeNumber'
	DESC 'Badge number'
# comment inside a definition
	EQUALITY caseIgnoreMatch
	SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )

objectclass ( myOrg:2.1 NAME 'badgeHolder' SUP top AUXILIARY
  MAY badgeNumber )

ObjectClasses	( myOrg:2.2 NAME 'other' )
access to * by * read
`

func TestRead(t *testing.T) {
	dirs, err := Read(strings.NewReader(sampleSchema), "example.schema")
	require.NoError(t, err)
	require.Len(t, dirs, 6)

	assert.Equal(t, KindObjectIdentifier, dirs[0].Kind)
	assert.Equal(t, []string{"myOrg", "1.3.6.1.4.1.9999"}, dirs[0].Args)
	assert.Equal(t, 4, dirs[0].Line)

	assert.Equal(t, KindObjectIdentifier, dirs[1].Kind)
	assert.Equal(t, "objectIdentifier", dirs[1].Keyword)
	assert.Equal(t, []string{"myAttrs", "myOrg:1"}, dirs[1].Args)

	assert.Equal(t, KindAttributeType, dirs[2].Kind)
	assert.Equal(t, 7, dirs[2].Line)
	assert.Equal(t,
		"( myAttrs:1 NAME 'badgeNumber' DESC 'Badge number' EQUALITY caseIgnoreMatch SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )",
		dirs[2].Text)
	assert.Equal(t, "example.schema:7", dirs[2].Location())

	assert.Equal(t, KindObjectClass, dirs[3].Kind)
	assert.Equal(t, "( myOrg:2.1 NAME 'badgeHolder' SUP top AUXILIARY MAY badgeNumber )", dirs[3].Text)
	assert.Equal(t, 13, dirs[3].Line)

	assert.Equal(t, KindObjectClass, dirs[4].Kind)
	assert.Equal(t, "ObjectClasses", dirs[4].Keyword)
	assert.Equal(t, "( myOrg:2.2 NAME 'other' )", dirs[4].Text)

	assert.Equal(t, KindUnknown, dirs[5].Kind)
	assert.Equal(t, "access", dirs[5].Keyword)
}

func TestReadContinuationWithoutDirective(t *testing.T) {
	_, err := Read(strings.NewReader("  ( 1.2.3 )\n"), "bad.schema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.schema:1")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "attributetype", KindAttributeType.String())
	assert.Equal(t, "objectclass", KindObjectClass.String())
	assert.Equal(t, "objectidentifier", KindObjectIdentifier.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestReadLDIF(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("( 1.2.3.5 NAME 'encoded' SUP name )"))
	ldif := "dn: cn=schema\n" +
		"objectClass: top\n" +
		"objectClass: subschema\n" +
		"ldapSyntaxes: ( 1.2.3.1 DESC 'Custom' )\n" +
		"matchingRules: ( 1.2.3.2 NAME 'customMatch' SYNTAX 1.2.3.1 )\n" +
		"attributeTypes: ( 1.2.3.4 NAME 'folded' SYNTAX 1.3.6.1.4.1.1466.1\n" +
		" 15.121.1.15 )\n" +
		"attributeTypes:: " + encoded + "\n" +
		"objectClasses: ( 1.2.3.6 NAME 'thing' SUP top MAY folded )\n"

	dirs, err := ReadLDIF(strings.NewReader(ldif), "schema.ldif")
	require.NoError(t, err)
	require.Len(t, dirs, 5)

	assert.Equal(t, KindSyntax, dirs[0].Kind)
	assert.Equal(t, KindMatchingRule, dirs[1].Kind)

	assert.Equal(t, KindAttributeType, dirs[2].Kind)
	assert.Equal(t, "( 1.2.3.4 NAME 'folded' SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )", dirs[2].Text)
	assert.Equal(t, 6, dirs[2].Line)

	assert.Equal(t, "( 1.2.3.5 NAME 'encoded' SUP name )", dirs[3].Text)
	assert.Equal(t, KindObjectClass, dirs[4].Kind)
}

func TestReadLDIFConfigSchema(t *testing.T) {
	ldif := `dn: cn={4}example,cn=schema,cn=config
objectClass: olcSchemaConfig
cn: {4}example
olcObjectIdentifier: {0}myOrg 1.3.6.1.4.1.9999
olcAttributeTypes: {0}( myOrg:1.1 NAME 'badgeNumber' SUP name )
olcObjectClasses: {0}( myOrg:2.1 NAME 'badgeHolder' SUP top AUXILIARY MAY badgeNumber )
`
	dirs, err := ReadLDIF(strings.NewReader(ldif), "cn=example.ldif")
	require.NoError(t, err)
	require.Len(t, dirs, 3)

	assert.Equal(t, KindObjectIdentifier, dirs[0].Kind)
	assert.Equal(t, []string{"myOrg", "1.3.6.1.4.1.9999"}, dirs[0].Args)
	assert.Equal(t, "( myOrg:1.1 NAME 'badgeNumber' SUP name )", dirs[1].Text)
	assert.Equal(t, KindObjectClass, dirs[2].Kind)
}

func TestReadLDIFErrors(t *testing.T) {
	_, err := ReadLDIF(strings.NewReader("attributeTypes:: !!!notbase64\n"), "bad.ldif")
	assert.ErrorIs(t, err, ErrInvalidLDIF)

	_, err = ReadLDIF(strings.NewReader("no separator here\n"), "bad.ldif")
	assert.ErrorIs(t, err, ErrInvalidLDIF)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "local.schema")
	require.NoError(t, os.WriteFile(schemaPath, []byte(sampleSchema), 0o644))
	dirs, err := ReadFile(schemaPath)
	require.NoError(t, err)
	assert.Len(t, dirs, 6)
	assert.Equal(t, schemaPath, dirs[0].File)

	ldifPath := filepath.Join(dir, "local.LDIF")
	require.NoError(t, os.WriteFile(ldifPath, []byte("dn: cn=schema\nobjectClasses: ( 1.2 NAME 'x' )\n"), 0o644))
	dirs, err = ReadFile(ldifPath)
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	assert.Equal(t, KindObjectClass, dirs[0].Kind)

	_, err = ReadFile(filepath.Join(dir, "missing.schema"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}
