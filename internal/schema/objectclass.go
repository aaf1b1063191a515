package schema

import "strings"

// ObjectClassKind represents the type of an LDAP object class.
type ObjectClassKind int

const (
	// ObjectClassAbstract classes are templates and never instantiated.
	ObjectClassAbstract ObjectClassKind = iota

	// ObjectClassStructural is the default kind. Every entry has exactly one.
	ObjectClassStructural

	// ObjectClassAuxiliary classes add attributes to a structural class.
	ObjectClassAuxiliary
)

// String returns the description keyword for the kind.
func (k ObjectClassKind) String() string {
	switch k {
	case ObjectClassAbstract:
		return "ABSTRACT"
	case ObjectClassStructural:
		return "STRUCTURAL"
	case ObjectClassAuxiliary:
		return "AUXILIARY"
	default:
		return "UNKNOWN"
	}
}

// canInherit reports whether a class of kind k may name a class of kind sup
// as superior.
func (k ObjectClassKind) canInherit(sup ObjectClassKind) bool {
	if sup == ObjectClassAbstract {
		return true
	}
	return k == sup
}

// ObjectClass is a parsed object class description.
//
// Superiors, Must and May hold descriptors or canonical numeric OIDs as
// written. EffectiveMust and EffectiveMay are computed by the Registry on
// insert and hold attribute type OIDs, superiors first.
type ObjectClass struct {
	OID        string
	Names      []string
	Desc       string
	Obsolete   bool
	Superiors  []string
	Kind       ObjectClassKind
	Must       []string
	May        []string
	Extensions []Extension

	// Operational is set only for built-in classes such as subschema.
	Operational bool

	EffectiveMust []string
	EffectiveMay  []string
}

// Name returns the primary name, or the OID when the class has no names.
func (oc *ObjectClass) Name() string {
	if len(oc.Names) > 0 {
		return oc.Names[0]
	}
	return oc.OID
}

// HasName reports whether name is one of the class names, ignoring case.
func (oc *ObjectClass) HasName(name string) bool {
	for _, n := range oc.Names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// IsAbstract returns true if this is an abstract object class.
func (oc *ObjectClass) IsAbstract() bool {
	return oc.Kind == ObjectClassAbstract
}

// IsStructural returns true if this is a structural object class.
func (oc *ObjectClass) IsStructural() bool {
	return oc.Kind == ObjectClassStructural
}

// IsAuxiliary returns true if this is an auxiliary object class.
func (oc *ObjectClass) IsAuxiliary() bool {
	return oc.Kind == ObjectClassAuxiliary
}

// Requires reports whether the attribute type OID is in the effective MUST set.
func (oc *ObjectClass) Requires(oid string) bool {
	return containsString(oc.EffectiveMust, oid)
}

// Allows reports whether the attribute type OID is in the effective MUST or
// MAY set.
func (oc *ObjectClass) Allows(oid string) bool {
	return containsString(oc.EffectiveMust, oid) || containsString(oc.EffectiveMay, oid)
}

// Clone returns a deep copy.
func (oc *ObjectClass) Clone() *ObjectClass {
	if oc == nil {
		return nil
	}
	c := *oc
	c.Names = cloneStrings(oc.Names)
	c.Superiors = cloneStrings(oc.Superiors)
	c.Must = cloneStrings(oc.Must)
	c.May = cloneStrings(oc.May)
	c.Extensions = cloneExtensions(oc.Extensions)
	c.EffectiveMust = cloneStrings(oc.EffectiveMust)
	c.EffectiveMay = cloneStrings(oc.EffectiveMay)
	return &c
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
