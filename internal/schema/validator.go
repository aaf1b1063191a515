package schema

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Violation classifies why an entry does not conform to the registry.
type Violation int

const (
	// ViolationObjectClass indicates an object class constraint violation.
	ViolationObjectClass Violation = iota
	// ViolationUndefinedAttribute indicates an attribute the schema does not define or allow.
	ViolationUndefinedAttribute
	// ViolationInvalidSyntax indicates a value that does not match its syntax.
	ViolationInvalidSyntax
	// ViolationMissingAttribute indicates a required (MUST) attribute is missing.
	ViolationMissingAttribute
	// ViolationSingleValue indicates a single-value attribute has multiple values.
	ViolationSingleValue
	// ViolationNoUserModification indicates an attempt to modify a read-only attribute.
	ViolationNoUserModification
)

// String returns a short name for the violation.
func (v Violation) String() string {
	switch v {
	case ViolationObjectClass:
		return "objectClassViolation"
	case ViolationUndefinedAttribute:
		return "undefinedAttributeType"
	case ViolationInvalidSyntax:
		return "invalidAttributeSyntax"
	case ViolationMissingAttribute:
		return "missingRequiredAttribute"
	case ViolationSingleValue:
		return "singleValueViolation"
	case ViolationNoUserModification:
		return "noUserModification"
	default:
		return "unknown"
	}
}

// ValidationError represents an entry that failed validation.
type ValidationError struct {
	Violation Violation
	Message   string
	Attr      string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Attr)
	}
	return e.Message
}

func violation(v Violation, message, attr string) *ValidationError {
	return &ValidationError{Violation: v, Message: message, Attr: attr}
}

// Entry is a directory entry to validate. Attribute names may be any name
// or OID of the attribute type.
type Entry struct {
	DN         string
	Attributes map[string][][]byte
}

// NewEntry creates a new Entry with the given DN.
func NewEntry(dn string) *Entry {
	return &Entry{
		DN:         dn,
		Attributes: make(map[string][][]byte),
	}
}

// SetStringAttribute sets the values of an attribute.
func (e *Entry) SetStringAttribute(name string, values ...string) {
	byteValues := make([][]byte, len(values))
	for i, v := range values {
		byteValues[i] = []byte(v)
	}
	e.Attributes[name] = byteValues
}

// GetAll returns all string values of an attribute, matching its name
// without regard to case.
func (e *Entry) GetAll(name string) []string {
	var result []string
	for attr, values := range e.Attributes {
		if !strings.EqualFold(attr, name) {
			continue
		}
		for _, v := range values {
			result = append(result, string(v))
		}
	}
	return result
}

// Clone creates a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := &Entry{
		DN:         e.DN,
		Attributes: make(map[string][][]byte, len(e.Attributes)),
	}
	for k, v := range e.Attributes {
		values := make([][]byte, len(v))
		for i, val := range v {
			values[i] = bytes.Clone(val)
		}
		clone.Attributes[k] = values
	}
	return clone
}

// ModificationType represents the type of modification operation.
type ModificationType int

const (
	// ModAdd adds values to an attribute.
	ModAdd ModificationType = iota
	// ModDelete removes values, or the whole attribute when none are given.
	ModDelete
	// ModReplace replaces all values of an attribute.
	ModReplace
)

// Modification represents a single modification to an entry.
type Modification struct {
	Type   ModificationType
	Attr   string
	Values [][]byte
}

// NewStringModification creates a new Modification with string values.
func NewStringModification(modType ModificationType, attr string, values ...string) Modification {
	byteValues := make([][]byte, len(values))
	for i, v := range values {
		byteValues[i] = []byte(v)
	}
	return Modification{Type: modType, Attr: attr, Values: byteValues}
}

// syntaxLookup is implemented by *Catalog.
type syntaxLookup interface {
	Syntax(oid string) *Syntax
}

// Validator checks entries against a registry.
type Validator struct {
	reg      *Registry
	syntaxes syntaxLookup
}

// NewValidator creates a Validator for reg. Value syntax checks run when
// the registry's references can look up syntax definitions.
func NewValidator(reg *Registry) *Validator {
	v := &Validator{reg: reg}
	if s, ok := reg.References().(syntaxLookup); ok {
		v.syntaxes = s
	}
	return v
}

// ValidateEntry validates an entry. It checks, in order:
//  1. objectClass is present and every class is known
//  2. exactly one structural class chain is present
//  3. every attribute is defined
//  4. MUST attributes are present
//  5. attributes are allowed by some class (operational ones always are)
//  6. SINGLE-VALUE and value syntax
func (v *Validator) ValidateEntry(entry *Entry) error {
	if entry == nil {
		return violation(ViolationObjectClass, "entry is nil", "")
	}

	classNames := entry.GetAll("objectClass")
	if len(classNames) == 0 {
		return violation(ViolationObjectClass, "objectClass required", "")
	}

	classes := make([]*ObjectClass, 0, len(classNames))
	extensible := false
	for _, name := range classNames {
		oc, ok := v.reg.ObjectClass(name)
		if !ok {
			return violation(ViolationObjectClass, "unknown objectClass", name)
		}
		if oc.OID == OIDExtensibleObject {
			extensible = true
		}
		classes = append(classes, oc)
	}
	if err := v.checkStructural(classes); err != nil {
		return err
	}

	present := make(map[string]*AttributeType, len(entry.Attributes))
	for attr, values := range entry.Attributes {
		at, ok := v.reg.AttributeType(attr)
		if !ok {
			return violation(ViolationUndefinedAttribute, "undefined attribute type", attr)
		}
		if len(values) > 0 {
			present[at.OID] = at
		}
	}

	for _, oc := range classes {
		for _, oid := range oc.EffectiveMust {
			if _, ok := present[oid]; !ok {
				return violation(ViolationMissingAttribute, "missing required attribute", v.attrName(oid))
			}
		}
	}

	for attr, values := range entry.Attributes {
		at, _ := v.reg.AttributeType(attr)
		if !extensible && !at.IsOperational() && !allowedBy(classes, at.OID) {
			return violation(ViolationUndefinedAttribute, "attribute not allowed by objectClass", attr)
		}
		if at.SingleValue && len(values) > 1 {
			return violation(ViolationSingleValue, "single-value attribute has multiple values", attr)
		}
		if err := v.checkValues(attr, at, values); err != nil {
			return err
		}
	}
	return nil
}

// checkStructural requires exactly one structural class once superclasses
// of other listed structural classes are discounted.
func (v *Validator) checkStructural(classes []*ObjectClass) error {
	var structural []*ObjectClass
	for _, oc := range classes {
		if oc.IsStructural() {
			structural = append(structural, oc)
		}
	}
	if len(structural) == 0 {
		return violation(ViolationObjectClass, "no structural objectClass", "")
	}
	leaves := 0
	for _, oc := range structural {
		isSuper := false
		for _, other := range structural {
			if other.OID != oc.OID && v.inherits(other, oc.OID) {
				isSuper = true
				break
			}
		}
		if !isSuper {
			leaves++
		}
	}
	if leaves > 1 {
		return violation(ViolationObjectClass, "multiple structural objectClasses", "")
	}
	return nil
}

// inherits reports whether oc derives from the class with OID sup.
func (v *Validator) inherits(oc *ObjectClass, sup string) bool {
	visited := make(map[string]bool)
	queue := []*ObjectClass{oc}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ref := range cur.Superiors {
			s, ok := v.reg.ObjectClass(ref)
			if !ok || visited[s.OID] {
				continue
			}
			if s.OID == sup {
				return true
			}
			visited[s.OID] = true
			queue = append(queue, s)
		}
	}
	return false
}

func allowedBy(classes []*ObjectClass, oid string) bool {
	for _, oc := range classes {
		if oc.Allows(oid) {
			return true
		}
	}
	return false
}

func (v *Validator) attrName(oid string) string {
	if at, ok := v.reg.AttributeType(oid); ok {
		return at.Name()
	}
	return oid
}

// checkValues applies the syntax validator and length bound of at.
func (v *Validator) checkValues(attr string, at *AttributeType, values [][]byte) error {
	var syn *Syntax
	if v.syntaxes != nil {
		syn = v.syntaxes.Syntax(at.Syntax)
	}
	for _, value := range values {
		if at.SyntaxLen > 0 && utf8.RuneCount(value) > at.SyntaxLen {
			return violation(ViolationInvalidSyntax, "value exceeds length bound", attr)
		}
		if syn != nil && !syn.Validate(value) {
			return violation(ViolationInvalidSyntax, "invalid attribute syntax", attr)
		}
	}
	return nil
}

// ValidateModification applies mods to a copy of entry and validates the
// result. Attributes marked NO-USER-MODIFICATION cannot be modified.
func (v *Validator) ValidateModification(entry *Entry, mods []Modification) error {
	if entry == nil {
		return violation(ViolationObjectClass, "entry is nil", "")
	}
	modified := entry.Clone()

	for _, mod := range mods {
		at, ok := v.reg.AttributeType(mod.Attr)
		if !ok {
			return violation(ViolationUndefinedAttribute, "undefined attribute type", mod.Attr)
		}
		if at.NoUserMod {
			return violation(ViolationNoUserModification, "attribute is read-only", mod.Attr)
		}

		key := attributeKey(modified, at)
		if key == "" {
			key = mod.Attr
		}
		existing := modified.Attributes[key]

		switch mod.Type {
		case ModAdd:
			modified.Attributes[key] = append(existing, mod.Values...)
		case ModDelete:
			if len(mod.Values) == 0 {
				delete(modified.Attributes, key)
				continue
			}
			kept := make([][]byte, 0, len(existing))
			for _, ev := range existing {
				if !containsValue(mod.Values, ev) {
					kept = append(kept, ev)
				}
			}
			if len(kept) == 0 {
				delete(modified.Attributes, key)
			} else {
				modified.Attributes[key] = kept
			}
		case ModReplace:
			if len(mod.Values) == 0 {
				delete(modified.Attributes, key)
			} else {
				modified.Attributes[key] = mod.Values
			}
		}
	}

	return v.ValidateEntry(modified)
}

// attributeKey finds the entry key naming at, under any of its names or OID.
func attributeKey(e *Entry, at *AttributeType) string {
	for k := range e.Attributes {
		if k == at.OID || at.HasName(k) {
			return k
		}
	}
	return ""
}

func containsValue(values [][]byte, v []byte) bool {
	for _, x := range values {
		if bytes.Equal(x, v) {
			return true
		}
	}
	return false
}
