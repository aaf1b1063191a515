package schema

import (
	"fmt"
	"sort"
	"strings"
)

// IsNumericOID reports whether s is one or more dot-separated numbers.
// A single number such as "1" is accepted. A number may not carry a leading
// zero unless it is exactly "0".
func IsNumericOID(s string) bool {
	if s == "" {
		return false
	}
	run := 0
	var lead byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigit(c):
			if run == 0 {
				lead = c
			} else if lead == '0' {
				return false
			}
			run++
		case c == '.':
			if run == 0 {
				return false
			}
			run = 0
		default:
			return false
		}
	}
	return run > 0
}

// MacroTable maps object identifier macro names to canonical numeric OIDs.
// Names are compared exactly.
//
// A MacroTable is not safe for concurrent mutation; ingestion hands each
// parse job a Clone taken at the job's position in the input.
type MacroTable struct {
	macros map[string]string
	order  []string
}

// NewMacroTable returns an empty table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]string)}
}

// Define adds name as an alias for value. The value may itself be a macro
// reference, which is resolved against the table before it is stored.
func (t *MacroTable) Define(name, value string) error {
	if !IsValidDescriptor(name) {
		return newError(CodeInvalidName, name)
	}
	if _, ok := t.macros[name]; ok {
		return fmt.Errorf("%w: %s", ErrMacroDefined, name)
	}
	oid, err := ResolveOID(value, t)
	if err != nil {
		return err
	}
	t.macros[name] = oid
	t.order = append(t.order, name)
	return nil
}

// Lookup returns the OID bound to name. A nil table has no macros.
func (t *MacroTable) Lookup(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	oid, ok := t.macros[name]
	return oid, ok
}

// Len returns the number of macros defined.
func (t *MacroTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.macros)
}

// Names returns the macro names in definition order.
func (t *MacroTable) Names() []string {
	if t == nil {
		return nil
	}
	return cloneStrings(t.order)
}

// Map returns a copy of the table contents.
func (t *MacroTable) Map() map[string]string {
	out := make(map[string]string, t.Len())
	if t == nil {
		return out
	}
	for k, v := range t.macros {
		out[k] = v
	}
	return out
}

// Clone returns an independent snapshot of the table.
func (t *MacroTable) Clone() *MacroTable {
	c := NewMacroTable()
	if t == nil {
		return c
	}
	for k, v := range t.macros {
		c.macros[k] = v
	}
	c.order = cloneStrings(t.order)
	return c
}

// SortedNames returns the macro names in lexical order.
func (t *MacroTable) SortedNames() []string {
	names := t.Names()
	sort.Strings(names)
	return names
}

// ResolveOID expands token to a canonical numeric OID.
//
// Numeric tokens are returned unchanged. Otherwise the token is split at the
// first ':'; the prefix must name a macro and the suffix, if present, must
// be numeric and is appended to the macro's OID.
func ResolveOID(token string, macros *MacroTable) (string, error) {
	if IsNumericOID(token) {
		return token, nil
	}
	prefix, suffix, _ := strings.Cut(token, ":")
	base, ok := macros.Lookup(prefix)
	if !ok {
		return "", newError(CodeOIDNotExpanded, token)
	}
	if suffix == "" {
		return base, nil
	}
	if !IsNumericOID(suffix) {
		return "", newError(CodeOIDNotExpanded, token)
	}
	return base + "." + suffix, nil
}

// resolveWoid resolves a name-or-OID reference. Numeric and macro forms
// become numeric OIDs; a bare descriptor stays a name.
func resolveWoid(token string, macros *MacroTable) (string, error) {
	if IsNumericOID(token) {
		return token, nil
	}
	if strings.Contains(token, ":") {
		return ResolveOID(token, macros)
	}
	if !IsValidDescriptor(token) {
		return "", newError(CodeInvalidName, token)
	}
	return token, nil
}
