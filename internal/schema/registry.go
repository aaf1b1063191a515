package schema

import (
	"strings"
	"sync"
)

// Policy tunes the checks a Registry applies on insert.
type Policy struct {
	// StrictSuperiorKinds enforces the RFC 4512 kind rules between an object
	// class and its superiors: abstract classes derive only from abstract
	// classes, auxiliary and structural classes from abstract classes or
	// their own kind.
	StrictSuperiorKinds bool

	// MaxDefinitions caps the number of stored definitions. Zero means no cap.
	MaxDefinitions int
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{StrictSuperiorKinds: true}
}

// Registry holds validated object classes and attribute types.
//
// Inserts are serialized and either store the whole definition or nothing.
// Lookups may run concurrently with an insert and only wait for its final
// commit. After Seal the registry is read-only.
type Registry struct {
	refs   References
	policy Policy

	// wmu serializes writers. Tables are only mutated while holding both
	// wmu and mu, so a writer may read them holding wmu alone.
	wmu sync.Mutex
	mu  sync.RWMutex

	sealed bool

	ocByOID  map[string]*ObjectClass
	ocByName map[string]*ObjectClass
	ocOrder  []*ObjectClass

	atByOID  map[string]*AttributeType
	atByName map[string]*AttributeType
	atOrder  []*AttributeType
}

// NewRegistry creates an empty registry. Attribute type references to
// syntaxes and matching rules are checked against refs; a nil refs knows
// none.
func NewRegistry(refs References, policy Policy) *Registry {
	if refs == nil {
		refs = NewCatalog()
	}
	return &Registry{
		refs:     refs,
		policy:   policy,
		ocByOID:  make(map[string]*ObjectClass),
		ocByName: make(map[string]*ObjectClass),
		atByOID:  make(map[string]*AttributeType),
		atByName: make(map[string]*AttributeType),
	}
}

// References returns the syntax and matching rule tables the registry
// checks against.
func (r *Registry) References() References {
	return r.refs
}

// Policy returns the registry policy.
func (r *Registry) Policy() Policy {
	return r.policy
}

// Seal makes the registry read-only. Further inserts fail with
// ErrRegistrySealed.
func (r *Registry) Seal() {
	r.wmu.Lock()
	defer r.wmu.Unlock()
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// checkOID applies the checks shared by both definition kinds, in order.
func (r *Registry) checkOID(oid string) error {
	if oid == "" {
		return newError(CodeOIDOrNameRequired, "")
	}
	if !IsNumericOID(oid) {
		return newError(CodeOIDNotExpanded, oid)
	}
	return nil
}

func (r *Registry) checkCapacity(oid string) error {
	if r.policy.MaxDefinitions > 0 && len(r.ocOrder)+len(r.atOrder) >= r.policy.MaxDefinitions {
		return newError(CodeOutOfMemory, oid)
	}
	return nil
}

// checkNames rejects names already taken, or repeated within names.
func checkNames[T any](names []string, taken map[string]T, dup Code) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := strings.ToLower(n)
		if _, ok := taken[key]; ok || seen[key] {
			return newError(dup, n)
		}
		seen[key] = true
	}
	return nil
}

// isSelf reports whether ref names the definition being inserted.
func isSelf(ref, oid string, names []string) bool {
	if ref == oid {
		return true
	}
	for _, n := range names {
		if strings.EqualFold(ref, n) {
			return true
		}
	}
	return false
}

func (r *Registry) lookupOC(ref string) *ObjectClass {
	if oc, ok := r.ocByOID[ref]; ok {
		return oc
	}
	return r.ocByName[strings.ToLower(ref)]
}

func (r *Registry) lookupAT(ref string) *AttributeType {
	if at, ok := r.atByOID[ref]; ok {
		return at
	}
	return r.atByName[strings.ToLower(ref)]
}

// InsertObjectClass validates oc and stores a copy of it with its effective
// MUST and MAY sets computed. On error nothing is stored.
func (r *Registry) InsertObjectClass(oc *ObjectClass) error {
	r.wmu.Lock()
	defer r.wmu.Unlock()
	if r.sealed {
		return ErrRegistrySealed
	}

	c := oc.Clone()
	if err := r.checkOID(c.OID); err != nil {
		return err
	}
	if err := r.checkCapacity(c.OID); err != nil {
		return err
	}
	if _, ok := r.ocByOID[c.OID]; ok {
		return newError(CodeDuplicateObjectClass, c.OID)
	}
	if err := checkNames(c.Names, r.ocByName, CodeDuplicateObjectClass); err != nil {
		return err
	}

	sups := make([]*ObjectClass, 0, len(c.Superiors))
	for _, ref := range c.Superiors {
		if isSelf(ref, c.OID, c.Names) {
			return newError(CodeObjectClassBadSuperior, ref)
		}
		sup := r.lookupOC(ref)
		if sup == nil {
			return newError(CodeObjectClassNotFound, ref)
		}
		if sup.Operational && !c.Operational {
			return newError(CodeObjectClassBadSuperior, ref)
		}
		if r.policy.StrictSuperiorKinds && !c.Kind.canInherit(sup.Kind) {
			return newError(CodeObjectClassBadSuperior, ref)
		}
		sups = append(sups, sup)
	}
	if err := r.checkSuperiorChain(sups); err != nil {
		return err
	}

	must, err := r.resolveAttrs(c, c.Must)
	if err != nil {
		return err
	}
	may, err := r.resolveAttrs(c, c.May)
	if err != nil {
		return err
	}

	var effMust, effMay []string
	for _, sup := range sups {
		effMust = appendUnique(effMust, sup.EffectiveMust...)
		effMay = appendUnique(effMay, sup.EffectiveMay...)
	}
	effMust = appendUnique(effMust, must...)
	effMay = appendUnique(effMay, may...)
	c.EffectiveMust = effMust
	c.EffectiveMay = subtract(effMay, effMust)

	r.mu.Lock()
	r.ocByOID[c.OID] = c
	for _, n := range c.Names {
		r.ocByName[strings.ToLower(n)] = c
	}
	r.ocOrder = append(r.ocOrder, c)
	r.mu.Unlock()
	return nil
}

// checkSuperiorChain walks every ancestor of sups and fails if a class is
// reached again while still on the current path.
func (r *Registry) checkSuperiorChain(sups []*ObjectClass) error {
	onPath := make(map[string]bool)
	done := make(map[string]bool)
	var walk func(oc *ObjectClass) error
	walk = func(oc *ObjectClass) error {
		if done[oc.OID] {
			return nil
		}
		if onPath[oc.OID] {
			return newError(CodeObjectClassBadSuperior, oc.Name())
		}
		onPath[oc.OID] = true
		for _, ref := range oc.Superiors {
			if sup := r.lookupOC(ref); sup != nil {
				if err := walk(sup); err != nil {
					return err
				}
			}
		}
		onPath[oc.OID] = false
		done[oc.OID] = true
		return nil
	}
	for _, sup := range sups {
		if err := walk(sup); err != nil {
			return err
		}
	}
	return nil
}

// resolveAttrs maps MUST or MAY references to attribute type OIDs.
func (r *Registry) resolveAttrs(oc *ObjectClass, refs []string) ([]string, error) {
	oids := make([]string, 0, len(refs))
	for _, ref := range refs {
		at := r.lookupAT(ref)
		if at == nil {
			return nil, newError(CodeAttributeTypeNotFound, ref)
		}
		if at.IsOperational() && !oc.Operational {
			return nil, newError(CodeObjectClassOperational, ref)
		}
		oids = append(oids, at.OID)
	}
	return oids, nil
}

// InsertAttributeType validates at and stores a copy of it with the
// matching rules, syntax, SINGLE-VALUE and usage inherited from its superior
// filled in. On error nothing is stored.
//
// A written usage must equal the superior's. The child of a collective type
// must itself be collective.
func (r *Registry) InsertAttributeType(at *AttributeType) error {
	r.wmu.Lock()
	defer r.wmu.Unlock()
	if r.sealed {
		return ErrRegistrySealed
	}

	c := at.Clone()
	if err := r.checkOID(c.OID); err != nil {
		return err
	}
	if c.Syntax == "" && c.Superior == "" {
		return newError(CodeAttributeTypeIncomplete, c.OID)
	}
	if err := r.checkCapacity(c.OID); err != nil {
		return err
	}
	if _, ok := r.atByOID[c.OID]; ok {
		return newError(CodeDuplicateAttributeType, c.OID)
	}
	if err := checkNames(c.Names, r.atByName, CodeDuplicateAttributeType); err != nil {
		return err
	}

	var sup *AttributeType
	if c.Superior != "" {
		if isSelf(c.Superior, c.OID, c.Names) {
			return newError(CodeAttributeTypeBadSuperior, c.Superior)
		}
		sup = r.lookupAT(c.Superior)
		if sup == nil {
			return newError(CodeAttributeTypeNotFound, c.Superior)
		}
		if c.explicitUsage() && sup.Usage != c.Usage {
			return newError(CodeAttributeTypeBadSuperior, c.Superior)
		}
		if !c.explicitUsage() && sup.Usage.IsOperational() && c.userOnly {
			return newError(CodeAttributeTypeBadUsage, sup.Usage.String())
		}
		if sup.Collective && !c.Collective {
			return newError(CodeAttributeTypeBadSuperior, c.Superior)
		}
		if err := r.checkAttributeChain(sup); err != nil {
			return err
		}
	}

	for _, mr := range []string{c.Equality, c.Ordering, c.Substring} {
		if mr != "" && !r.refs.HasMatchingRule(mr) {
			return newError(CodeMatchingRuleNotFound, mr)
		}
	}
	if c.Syntax != "" && !r.refs.HasSyntax(c.Syntax) {
		return newError(CodeSyntaxNotFound, c.Syntax)
	}

	if sup != nil {
		if c.Equality == "" {
			c.Equality = sup.Equality
		}
		if c.Ordering == "" {
			c.Ordering = sup.Ordering
		}
		if c.Substring == "" {
			c.Substring = sup.Substring
		}
		if c.Syntax == "" {
			c.Syntax = sup.Syntax
			c.SyntaxLen = sup.SyntaxLen
		}
		c.SingleValue = c.SingleValue || sup.SingleValue
		c.Usage = sup.Usage
	}
	if c.Syntax == "" {
		return newError(CodeSyntaxRequired, c.OID)
	}

	r.mu.Lock()
	r.atByOID[c.OID] = c
	for _, n := range c.Names {
		r.atByName[strings.ToLower(n)] = c
	}
	r.atOrder = append(r.atOrder, c)
	r.mu.Unlock()
	return nil
}

// checkAttributeChain follows the superior chain from at and fails if an
// attribute type is visited twice.
func (r *Registry) checkAttributeChain(at *AttributeType) error {
	visited := make(map[string]bool)
	for cur := at; cur != nil; cur = r.lookupAT(cur.Superior) {
		if visited[cur.OID] {
			return newError(CodeAttributeTypeBadSuperior, cur.Name())
		}
		visited[cur.OID] = true
		if cur.Superior == "" {
			break
		}
	}
	return nil
}

// ObjectClass returns a copy of the object class with the given name or OID.
func (r *Registry) ObjectClass(nameOrOID string) (*ObjectClass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	oc := r.lookupOC(nameOrOID)
	return oc.Clone(), oc != nil
}

// AttributeType returns a copy of the attribute type with the given name or OID.
func (r *Registry) AttributeType(nameOrOID string) (*AttributeType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	at := r.lookupAT(nameOrOID)
	return at.Clone(), at != nil
}

// ObjectClasses returns copies of all object classes in insertion order.
func (r *Registry) ObjectClasses() []*ObjectClass {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ObjectClass, len(r.ocOrder))
	for i, oc := range r.ocOrder {
		out[i] = oc.Clone()
	}
	return out
}

// AttributeTypes returns copies of all attribute types in insertion order.
func (r *Registry) AttributeTypes() []*AttributeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*AttributeType, len(r.atOrder))
	for i, at := range r.atOrder {
		out[i] = at.Clone()
	}
	return out
}

// NumObjectClasses returns the number of stored object classes.
func (r *Registry) NumObjectClasses() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ocOrder)
}

// NumAttributeTypes returns the number of stored attribute types.
func (r *Registry) NumAttributeTypes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.atOrder)
}

// Len returns the total number of stored definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ocOrder) + len(r.atOrder)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !containsString(list, v) {
			list = append(list, v)
		}
	}
	return list
}

func subtract(list, remove []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if !containsString(remove, v) {
			out = append(out, v)
		}
	}
	return out
}
