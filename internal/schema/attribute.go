package schema

import "strings"

// AttributeUsage defines how an attribute is used in the directory.
type AttributeUsage int

const (
	// UserApplications is the default usage of user attributes.
	UserApplications AttributeUsage = iota

	// DirectoryOperation marks attributes maintained by the directory itself.
	DirectoryOperation

	// DistributedOperation marks operational attributes shared between servers.
	DistributedOperation

	// DSAOperation marks operational attributes local to one server.
	DSAOperation
)

// String returns the keyword used for the usage in a USAGE clause.
func (u AttributeUsage) String() string {
	switch u {
	case UserApplications:
		return "userApplications"
	case DirectoryOperation:
		return "directoryOperation"
	case DistributedOperation:
		return "distributedOperation"
	case DSAOperation:
		return "dSAOperation"
	default:
		return "unknown"
	}
}

// IsOperational returns true if this usage indicates an operational attribute.
func (u AttributeUsage) IsOperational() bool {
	return u != UserApplications
}

// ParseUsage maps a USAGE keyword to its value. Matching is case-insensitive.
func ParseUsage(s string) (AttributeUsage, bool) {
	switch strings.ToLower(s) {
	case "userapplications":
		return UserApplications, true
	case "directoryoperation":
		return DirectoryOperation, true
	case "distributedoperation":
		return DistributedOperation, true
	case "dsaoperation":
		return DSAOperation, true
	default:
		return UserApplications, false
	}
}

// AttributeType is a parsed attribute type description.
//
// Superior, Equality, Ordering and Substring hold either a canonical numeric
// OID or a descriptor, exactly as written after macro resolution. Once the
// definition is stored in a Registry the matching rules, syntax, SyntaxLen
// and SingleValue carry the effective values inherited from the superior
// chain.
type AttributeType struct {
	OID         string
	Names       []string
	Desc        string
	Obsolete    bool
	Superior    string
	Equality    string
	Ordering    string
	Substring   string
	Syntax      string
	SyntaxLen   int // 0 means no bound
	SingleValue bool
	Collective  bool
	NoUserMod   bool
	Usage       AttributeUsage
	Extensions  []Extension

	// usageSet records an explicit USAGE clause, userApplications included.
	usageSet bool
	// userOnly marks a definition parsed without AllowOperational; it may
	// not pick up an operational usage from its superior.
	userOnly bool
}

// explicitUsage reports whether the usage was written rather than defaulted.
func (at *AttributeType) explicitUsage() bool {
	return at.usageSet || at.Usage != UserApplications
}

// Name returns the primary name, or the OID when the type has no names.
func (at *AttributeType) Name() string {
	if len(at.Names) > 0 {
		return at.Names[0]
	}
	return at.OID
}

// HasName reports whether name is one of the type's names, ignoring case.
func (at *AttributeType) HasName(name string) bool {
	for _, n := range at.Names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// IsOperational returns true if this is an operational attribute.
func (at *AttributeType) IsOperational() bool {
	return at.Usage.IsOperational()
}

// IsUserAttribute returns true if users may write this attribute.
func (at *AttributeType) IsUserAttribute() bool {
	return at.Usage == UserApplications && !at.NoUserMod
}

// Clone returns a deep copy.
func (at *AttributeType) Clone() *AttributeType {
	if at == nil {
		return nil
	}
	c := *at
	c.Names = cloneStrings(at.Names)
	c.Extensions = cloneExtensions(at.Extensions)
	return &c
}

// Extension is an X- clause carried verbatim on a definition.
type Extension struct {
	Name   string
	Values []string
}

func cloneExtensions(in []Extension) []Extension {
	if in == nil {
		return nil
	}
	out := make([]Extension, len(in))
	for i, e := range in {
		out[i] = Extension{Name: e.Name, Values: cloneStrings(e.Values)}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
