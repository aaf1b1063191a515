package schema

import "fmt"

// Well-known object classes the entry validator treats specially.
const (
	OIDTop              = "2.5.6.0"
	OIDExtensibleObject = "1.3.6.1.4.1.1466.101.120.111"
)

// DefaultCatalog returns a catalog with the built-in syntaxes and matching
// rules.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, s := range defaultSyntaxes {
		if err := c.AddSyntax(&Syntax{OID: s.oid, Description: s.desc, Validator: s.validator}); err != nil {
			panic(fmt.Sprintf("schema: built-in syntax %s: %v", s.oid, err))
		}
	}
	for _, def := range defaultMatchingRules {
		mr, err := ParseMatchingRule(def, ParseOptions{})
		if err == nil {
			err = c.AddMatchingRule(mr)
		}
		if err != nil {
			panic(fmt.Sprintf("schema: built-in matching rule %s: %v", def, err))
		}
	}
	return c
}

// LoadBuiltins inserts the built-in attribute types and object classes into
// reg. Unlike the ingestion path, operational attribute types are accepted.
func LoadBuiltins(reg *Registry) error {
	opts := ParseOptions{AllowOperational: true, Strict: true}
	for _, def := range defaultAttributeTypes {
		at, err := ParseAttributeType(def, opts)
		if err != nil {
			return fmt.Errorf("built-in attribute type %s: %w", def, err)
		}
		if err := reg.InsertAttributeType(at); err != nil {
			return fmt.Errorf("built-in attribute type %s: %w", at.Name(), err)
		}
	}
	for _, b := range defaultObjectClasses {
		oc, err := ParseObjectClass(b.def, opts)
		if err != nil {
			return fmt.Errorf("built-in object class %s: %w", b.def, err)
		}
		oc.Operational = b.operational
		if err := reg.InsertObjectClass(oc); err != nil {
			return fmt.Errorf("built-in object class %s: %w", oc.Name(), err)
		}
	}
	return nil
}

// NewDefaultRegistry returns an unsealed registry backed by DefaultCatalog
// and holding the built-in schema, along with the catalog itself.
func NewDefaultRegistry(policy Policy) (*Registry, *Catalog, error) {
	catalog := DefaultCatalog()
	reg := NewRegistry(catalog, policy)
	if err := LoadBuiltins(reg); err != nil {
		return nil, nil, err
	}
	return reg, catalog, nil
}
