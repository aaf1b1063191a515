// Package schema provides LDAP schema data structures including object classes,
// attribute types, syntaxes, and matching rules.
package schema

import (
	"strings"
	"sync"
)

// SyntaxSet reports whether a syntax OID is known.
type SyntaxSet interface {
	HasSyntax(oid string) bool
}

// MatchingRuleSet reports whether a matching rule name or OID is known.
type MatchingRuleSet interface {
	HasMatchingRule(nameOrOID string) bool
}

// References is what a Registry needs to check attribute type references.
type References interface {
	SyntaxSet
	MatchingRuleSet
}

// MatchingRule defines how attribute values are compared for equality,
// ordering, and substring matching operations.
type MatchingRule struct {
	OID         string
	Names       []string
	Description string
	Syntax      string // Syntax OID this rule applies to
	Obsolete    bool
}

// Name returns the primary name, or the OID when the rule has no names.
func (mr *MatchingRule) Name() string {
	if len(mr.Names) > 0 {
		return mr.Names[0]
	}
	return mr.OID
}

// Catalog holds the syntaxes and matching rules attribute types may refer to.
// It is safe for concurrent use.
type Catalog struct {
	mu            sync.RWMutex
	syntaxes      map[string]*Syntax
	syntaxOrder   []string
	matchingRules map[string]*MatchingRule // by OID and lower-case name
	ruleOrder     []string
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		syntaxes:      make(map[string]*Syntax),
		matchingRules: make(map[string]*MatchingRule),
	}
}

// AddSyntax registers a syntax. Its OID must be numeric and unused.
func (c *Catalog) AddSyntax(syn *Syntax) error {
	if syn.OID == "" {
		return newError(CodeOIDOrNameRequired, "")
	}
	if !IsNumericOID(syn.OID) {
		return newError(CodeOIDNotExpanded, syn.OID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.syntaxes[syn.OID]; ok {
		return newError(CodeDuplicateSyntax, syn.OID)
	}
	c.syntaxes[syn.OID] = syn
	c.syntaxOrder = append(c.syntaxOrder, syn.OID)
	return nil
}

// AddMatchingRule registers a matching rule. Its syntax must already be known.
func (c *Catalog) AddMatchingRule(mr *MatchingRule) error {
	if mr.OID == "" {
		return newError(CodeOIDOrNameRequired, "")
	}
	if !IsNumericOID(mr.OID) {
		return newError(CodeOIDNotExpanded, mr.OID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.matchingRules[mr.OID]; ok {
		return newError(CodeDuplicateMatchingRule, mr.OID)
	}
	for _, n := range mr.Names {
		if _, ok := c.matchingRules[strings.ToLower(n)]; ok {
			return newError(CodeDuplicateMatchingRule, n)
		}
	}
	if mr.Syntax != "" {
		if _, ok := c.syntaxes[mr.Syntax]; !ok {
			return newError(CodeSyntaxNotFound, mr.Syntax)
		}
	}
	c.matchingRules[mr.OID] = mr
	for _, n := range mr.Names {
		c.matchingRules[strings.ToLower(n)] = mr
	}
	c.ruleOrder = append(c.ruleOrder, mr.OID)
	return nil
}

// HasSyntax reports whether the syntax OID is registered.
func (c *Catalog) HasSyntax(oid string) bool {
	return c.Syntax(oid) != nil
}

// HasMatchingRule reports whether the matching rule is registered.
func (c *Catalog) HasMatchingRule(nameOrOID string) bool {
	return c.MatchingRule(nameOrOID) != nil
}

// Syntax retrieves a syntax by OID. Returns nil if not found.
func (c *Catalog) Syntax(oid string) *Syntax {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.syntaxes[oid]
}

// MatchingRule retrieves a matching rule by name or OID. Returns nil if not found.
func (c *Catalog) MatchingRule(nameOrOID string) *MatchingRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if mr, ok := c.matchingRules[nameOrOID]; ok {
		return mr
	}
	return c.matchingRules[strings.ToLower(nameOrOID)]
}

// Syntaxes returns all syntaxes in registration order.
func (c *Catalog) Syntaxes() []*Syntax {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Syntax, 0, len(c.syntaxOrder))
	for _, oid := range c.syntaxOrder {
		out = append(out, c.syntaxes[oid])
	}
	return out
}

// MatchingRules returns all matching rules in registration order.
func (c *Catalog) MatchingRules() []*MatchingRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*MatchingRule, 0, len(c.ruleOrder))
	for _, oid := range c.ruleOrder {
		out = append(out, c.matchingRules[oid])
	}
	return out
}
