package schema

import (
	"strconv"
	"strings"
)

// ParseOptions controls how description text is parsed.
type ParseOptions struct {
	// Macros resolves object identifier macros. Nil means no macros.
	Macros *MacroTable

	// Strict rejects unknown qualifiers instead of skipping them.
	Strict bool

	// AllowOperational accepts attribute types whose USAGE is not
	// userApplications. Only the built-in schema sets it.
	AllowOperational bool

	// MaxLength bounds the description text in bytes. Zero means no bound.
	MaxLength int
}

type tokenKind int

const (
	tokBare tokenKind = iota
	tokQuoted
	tokOpen
	tokClose
	tokDollar
)

type token struct {
	kind tokenKind
	text string
}

// String renders the token the way it appeared in the input.
func (t token) String() string {
	if t.kind == tokQuoted {
		return "'" + t.text + "'"
	}
	return t.text
}

// tokenize splits description text into tokens. Quoted strings lose their
// quotes and have the \27 and \5C escapes decoded.
func tokenize(s string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		ch := s[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokOpen, text: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokClose, text: ")"})
			i++
		case ch == '$':
			tokens = append(tokens, token{kind: tokDollar, text: "$"})
			i++
		case ch == '\'':
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				return nil, newError(CodeSyntaxError, s[i:])
			}
			tokens = append(tokens, token{kind: tokQuoted, text: unescapeQuoted(s[i+1 : i+1+end])})
			i += end + 2
		default:
			start := i
			for i < len(s) && !isDelimiter(s[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokBare, text: s[start:i]})
		}
	}
	return tokens, nil
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '$', '\'':
		return true
	}
	return false
}

func unescapeQuoted(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 <= len(s) {
			switch strings.ToUpper(s[i+1 : i+3]) {
			case "27":
				b.WriteByte('\'')
				i += 2
				continue
			case "5C":
				b.WriteByte('\\')
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Keywords shared by every description kind.
var commonKeywords = map[string]bool{
	"NAME": true, "DESC": true, "OBSOLETE": true, "SUP": true,
	"ABSTRACT": true, "STRUCTURAL": true, "AUXILIARY": true,
	"MUST": true, "MAY": true,
	"EQUALITY": true, "ORDERING": true, "SUBSTR": true, "SYNTAX": true,
	"SINGLE-VALUE": true, "COLLECTIVE": true, "NO-USER-MODIFICATION": true,
	"USAGE": true,
}

func isKeyword(s string) bool {
	u := strings.ToUpper(s)
	return commonKeywords[u] || strings.HasPrefix(u, "X-")
}

// descParser walks the token stream of a single description.
type descParser struct {
	toks []token
	pos  int
	text string
	opts ParseOptions
	seen map[string]bool
}

func newDescParser(text string, opts ParseOptions) (*descParser, error) {
	if opts.MaxLength > 0 && len(text) > opts.MaxLength {
		return nil, newError(CodeDescriptionTooLong, truncate(text, 32))
	}
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, newError(CodeSyntaxError, text)
	}
	if toks[0].kind != tokOpen {
		return nil, newError(CodeSyntaxError, toks[0].String())
	}
	return &descParser{toks: toks, pos: 1, text: text, opts: opts, seen: make(map[string]bool)}, nil
}

func (p *descParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *descParser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

// rest returns the unconsumed input from the current token on, for
// diagnostics.
func (p *descParser) rest() string {
	parts := make([]string, 0, len(p.toks)-p.pos)
	for _, t := range p.toks[p.pos:] {
		parts = append(parts, t.String())
	}
	if len(parts) == 0 {
		return p.text
	}
	return strings.Join(parts, " ")
}

// oid reads the identifying OID that follows the opening parenthesis.
func (p *descParser) oid() (string, error) {
	t, ok := p.peek()
	if !ok {
		return "", newError(CodeSyntaxError, p.text)
	}
	if t.kind == tokClose || (t.kind == tokBare && isKeyword(t.text)) {
		return "", newError(CodeMissingOID, t.text)
	}
	if t.kind != tokBare {
		return "", newError(CodeSyntaxError, t.String())
	}
	p.pos++
	return ResolveOID(t.text, p.opts.Macros)
}

// clause reads the next keyword. It returns done when the closing
// parenthesis was consumed and nothing follows it.
func (p *descParser) clause() (keyword string, done bool, err error) {
	t, ok := p.next()
	if !ok {
		return "", false, newError(CodeSyntaxError, p.text)
	}
	if t.kind == tokClose {
		if p.pos != len(p.toks) {
			return "", false, newError(CodeSyntaxError, p.rest())
		}
		return "", true, nil
	}
	if t.kind != tokBare {
		return "", false, newError(CodeSyntaxError, t.String())
	}
	return t.text, false, nil
}

// once records a clause and rejects its repetition.
func (p *descParser) once(key, keyword string) error {
	if p.seen[key] {
		return newError(CodeDuplicateClause, keyword)
	}
	p.seen[key] = true
	return nil
}

// unknown handles a keyword the description kind does not define.
func (p *descParser) unknown(keyword string) error {
	if p.opts.Strict {
		return newError(CodeQualifierNotSupported, keyword)
	}
	t, ok := p.peek()
	if !ok {
		return nil
	}
	switch t.kind {
	case tokOpen:
		depth := 0
		for {
			t, ok := p.next()
			if !ok {
				return newError(CodeSyntaxError, p.text)
			}
			switch t.kind {
			case tokOpen:
				depth++
			case tokClose:
				depth--
			}
			if depth == 0 {
				return nil
			}
		}
	case tokQuoted:
		p.pos++
	case tokBare:
		if !isKeyword(t.text) {
			p.pos++
		}
	}
	return nil
}

// extension reads the qdstrings argument of an X- clause.
func (p *descParser) extension(name string) (Extension, error) {
	values, err := p.qdstrings()
	if err != nil {
		return Extension{}, err
	}
	return Extension{Name: name, Values: values}, nil
}

func (p *descParser) qdstring() (string, error) {
	t, ok := p.next()
	if !ok {
		return "", newError(CodeSyntaxError, p.text)
	}
	if t.kind != tokQuoted {
		return "", newError(CodeSyntaxError, t.String())
	}
	return t.text, nil
}

func (p *descParser) qdstrings() ([]string, error) {
	t, ok := p.next()
	if !ok {
		return nil, newError(CodeSyntaxError, p.text)
	}
	switch t.kind {
	case tokQuoted:
		return []string{t.text}, nil
	case tokOpen:
		var out []string
		for {
			t, ok := p.next()
			if !ok {
				return nil, newError(CodeSyntaxError, p.text)
			}
			if t.kind == tokClose {
				return out, nil
			}
			if t.kind != tokQuoted {
				return nil, newError(CodeSyntaxError, t.String())
			}
			out = append(out, t.text)
		}
	default:
		return nil, newError(CodeSyntaxError, t.String())
	}
}

// names reads a NAME argument: one name or a parenthesised list.
// Quoted and bare names are both accepted.
func (p *descParser) names() ([]string, error) {
	t, ok := p.next()
	if !ok {
		return nil, newError(CodeSyntaxError, p.text)
	}
	var raw []string
	switch t.kind {
	case tokQuoted, tokBare:
		raw = []string{t.text}
	case tokOpen:
		for {
			t, ok := p.next()
			if !ok {
				return nil, newError(CodeSyntaxError, p.text)
			}
			if t.kind == tokClose {
				break
			}
			if t.kind != tokQuoted && t.kind != tokBare {
				return nil, newError(CodeSyntaxError, t.String())
			}
			raw = append(raw, t.text)
		}
		if len(raw) == 0 {
			return nil, newError(CodeSyntaxError, "()")
		}
	default:
		return nil, newError(CodeSyntaxError, t.String())
	}
	seen := make(map[string]bool, len(raw))
	for _, n := range raw {
		if !IsValidDescriptor(n) {
			return nil, newError(CodeInvalidName, n)
		}
		key := strings.ToLower(n)
		if seen[key] {
			return nil, newError(CodeInvalidName, n)
		}
		seen[key] = true
	}
	return raw, nil
}

// woid reads a single name-or-OID reference.
func (p *descParser) woid() (string, error) {
	t, ok := p.next()
	if !ok {
		return "", newError(CodeSyntaxError, p.text)
	}
	if t.kind != tokBare && t.kind != tokQuoted {
		return "", newError(CodeSyntaxError, t.String())
	}
	return resolveWoid(t.text, p.opts.Macros)
}

// oids reads one reference or a '$' separated parenthesised list.
func (p *descParser) oids() ([]string, error) {
	t, ok := p.peek()
	if !ok {
		return nil, newError(CodeSyntaxError, p.text)
	}
	if t.kind != tokOpen {
		w, err := p.woid()
		if err != nil {
			return nil, err
		}
		return []string{w}, nil
	}
	p.pos++
	var out []string
	for {
		w, err := p.woid()
		if err != nil {
			return nil, err
		}
		out = append(out, w)
		t, ok := p.next()
		if !ok {
			return nil, newError(CodeSyntaxError, p.text)
		}
		switch t.kind {
		case tokClose:
			return out, nil
		case tokDollar:
		default:
			return nil, newError(CodeSyntaxError, t.String())
		}
	}
}

// noidlen reads a SYNTAX argument with its optional {n} bound.
func (p *descParser) noidlen() (string, int, error) {
	t, ok := p.next()
	if !ok {
		return "", 0, newError(CodeSyntaxError, p.text)
	}
	if t.kind != tokBare && t.kind != tokQuoted {
		return "", 0, newError(CodeSyntaxError, t.String())
	}
	oidPart, lenPart, hasLen := strings.Cut(t.text, "{")
	length := 0
	if hasLen {
		digits, ok := strings.CutSuffix(lenPart, "}")
		if !ok {
			return "", 0, newError(CodeSyntaxError, t.text)
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n < 1 || !IsNumericOID(digits) {
			return "", 0, newError(CodeSyntaxError, t.text)
		}
		length = n
	}
	if oidPart == "" {
		return "", 0, newError(CodeOIDNotExpanded, t.text)
	}
	oid, err := ResolveOID(oidPart, p.opts.Macros)
	if err != nil {
		return "", 0, err
	}
	return oid, length, nil
}

// ParseObjectClass parses an ObjectClassDescription.
//
//	( OID [NAME qdescrs] [DESC qdstring] [OBSOLETE] [SUP oids]
//	  [ABSTRACT|STRUCTURAL|AUXILIARY] [MUST oids] [MAY oids] extensions )
func ParseObjectClass(text string, opts ParseOptions) (*ObjectClass, error) {
	p, err := newDescParser(text, opts)
	if err != nil {
		return nil, err
	}
	oid, err := p.oid()
	if err != nil {
		return nil, err
	}
	oc := &ObjectClass{OID: oid, Kind: ObjectClassStructural}

	for {
		keyword, done, err := p.clause()
		if err != nil {
			return nil, err
		}
		if done {
			return oc, nil
		}
		kw := strings.ToUpper(keyword)
		if strings.HasPrefix(kw, "X-") {
			ext, err := p.extension(keyword)
			if err != nil {
				return nil, err
			}
			oc.Extensions = append(oc.Extensions, ext)
			continue
		}

		key := kw
		switch kw {
		case "ABSTRACT", "STRUCTURAL", "AUXILIARY":
			key = "KIND"
		case "NAME", "DESC", "OBSOLETE", "SUP", "MUST", "MAY":
		default:
			if err := p.unknown(keyword); err != nil {
				return nil, err
			}
			continue
		}
		if err := p.once(key, keyword); err != nil {
			return nil, err
		}

		switch kw {
		case "NAME":
			oc.Names, err = p.names()
		case "DESC":
			oc.Desc, err = p.qdstring()
		case "OBSOLETE":
			oc.Obsolete = true
		case "SUP":
			oc.Superiors, err = p.oids()
		case "ABSTRACT":
			oc.Kind = ObjectClassAbstract
		case "STRUCTURAL":
			oc.Kind = ObjectClassStructural
		case "AUXILIARY":
			oc.Kind = ObjectClassAuxiliary
		case "MUST":
			oc.Must, err = p.oids()
		case "MAY":
			oc.May, err = p.oids()
		}
		if err != nil {
			return nil, err
		}
	}
}

// ParseAttributeType parses an AttributeTypeDescription.
//
//	( OID [NAME qdescrs] [DESC qdstring] [OBSOLETE] [SUP woid]
//	  [EQUALITY woid] [ORDERING woid] [SUBSTR woid] [SYNTAX noidlen]
//	  [SINGLE-VALUE] [COLLECTIVE] [NO-USER-MODIFICATION] [USAGE usage]
//	  extensions )
//
// Unless opts.AllowOperational is set, a usage other than userApplications
// is rejected and the result may not inherit one from its superior. A type
// with neither SYNTAX nor SUP is incomplete.
func ParseAttributeType(text string, opts ParseOptions) (*AttributeType, error) {
	p, err := newDescParser(text, opts)
	if err != nil {
		return nil, err
	}
	oid, err := p.oid()
	if err != nil {
		return nil, err
	}
	at := &AttributeType{OID: oid, Usage: UserApplications}

	for {
		keyword, done, err := p.clause()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		kw := strings.ToUpper(keyword)
		if strings.HasPrefix(kw, "X-") {
			ext, err := p.extension(keyword)
			if err != nil {
				return nil, err
			}
			at.Extensions = append(at.Extensions, ext)
			continue
		}

		switch kw {
		case "NAME", "DESC", "OBSOLETE", "SUP", "EQUALITY", "ORDERING", "SUBSTR",
			"SYNTAX", "SINGLE-VALUE", "COLLECTIVE", "NO-USER-MODIFICATION", "USAGE":
		default:
			if err := p.unknown(keyword); err != nil {
				return nil, err
			}
			continue
		}
		if err := p.once(kw, keyword); err != nil {
			return nil, err
		}

		switch kw {
		case "NAME":
			at.Names, err = p.names()
		case "DESC":
			at.Desc, err = p.qdstring()
		case "OBSOLETE":
			at.Obsolete = true
		case "SUP":
			at.Superior, err = p.woid()
		case "EQUALITY":
			at.Equality, err = p.woid()
		case "ORDERING":
			at.Ordering, err = p.woid()
		case "SUBSTR":
			at.Substring, err = p.woid()
		case "SYNTAX":
			at.Syntax, at.SyntaxLen, err = p.noidlen()
		case "SINGLE-VALUE":
			at.SingleValue = true
		case "COLLECTIVE":
			at.Collective = true
		case "NO-USER-MODIFICATION":
			at.NoUserMod = true
		case "USAGE":
			at.Usage, err = p.usage()
			at.usageSet = true
		}
		if err != nil {
			return nil, err
		}
	}

	if !opts.AllowOperational {
		if at.Usage.IsOperational() {
			return nil, newError(CodeAttributeTypeBadUsage, at.Usage.String())
		}
		at.userOnly = true
	}
	if at.Syntax == "" && at.Superior == "" {
		return nil, newError(CodeAttributeTypeIncomplete, at.OID)
	}
	return at, nil
}

func (p *descParser) usage() (AttributeUsage, error) {
	t, ok := p.next()
	if !ok {
		return UserApplications, newError(CodeSyntaxError, p.text)
	}
	if t.kind != tokBare && t.kind != tokQuoted {
		return UserApplications, newError(CodeSyntaxError, t.String())
	}
	u, ok := ParseUsage(t.text)
	if !ok {
		return UserApplications, newError(CodeSyntaxError, t.text)
	}
	return u, nil
}

// ParseMatchingRule parses a MatchingRuleDescription.
//
//	( OID [NAME qdescrs] [DESC qdstring] [OBSOLETE] SYNTAX numericoid extensions )
func ParseMatchingRule(text string, opts ParseOptions) (*MatchingRule, error) {
	p, err := newDescParser(text, opts)
	if err != nil {
		return nil, err
	}
	oid, err := p.oid()
	if err != nil {
		return nil, err
	}
	mr := &MatchingRule{OID: oid}

	for {
		keyword, done, err := p.clause()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		kw := strings.ToUpper(keyword)
		if strings.HasPrefix(kw, "X-") {
			if _, err := p.extension(keyword); err != nil {
				return nil, err
			}
			continue
		}
		switch kw {
		case "NAME", "DESC", "OBSOLETE", "SYNTAX":
		default:
			if err := p.unknown(keyword); err != nil {
				return nil, err
			}
			continue
		}
		if err := p.once(kw, keyword); err != nil {
			return nil, err
		}
		switch kw {
		case "NAME":
			mr.Names, err = p.names()
		case "DESC":
			mr.Description, err = p.qdstring()
		case "OBSOLETE":
			mr.Obsolete = true
		case "SYNTAX":
			mr.Syntax, _, err = p.noidlen()
		}
		if err != nil {
			return nil, err
		}
	}
	if mr.Syntax == "" {
		return nil, newError(CodeSyntaxRequired, mr.OID)
	}
	return mr, nil
}

// ParseSyntax parses a SyntaxDescription: ( numericoid [DESC qdstring] extensions ).
func ParseSyntax(text string, opts ParseOptions) (*Syntax, error) {
	p, err := newDescParser(text, opts)
	if err != nil {
		return nil, err
	}
	oid, err := p.oid()
	if err != nil {
		return nil, err
	}
	syn := &Syntax{OID: oid}

	for {
		keyword, done, err := p.clause()
		if err != nil {
			return nil, err
		}
		if done {
			return syn, nil
		}
		kw := strings.ToUpper(keyword)
		switch {
		case strings.HasPrefix(kw, "X-"):
			ext, err := p.extension(keyword)
			if err != nil {
				return nil, err
			}
			syn.Extensions = append(syn.Extensions, ext)
		case kw == "DESC":
			if err := p.once(kw, keyword); err != nil {
				return nil, err
			}
			if syn.Description, err = p.qdstring(); err != nil {
				return nil, err
			}
		default:
			if err := p.unknown(keyword); err != nil {
				return nil, err
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
