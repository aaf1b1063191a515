package schema

import (
	"strconv"
	"strings"
)

// String formats the object class as an ObjectClassDescription.
// Parsing the result yields an equal definition.
func (oc *ObjectClass) String() string {
	var b strings.Builder
	b.WriteString("( ")
	b.WriteString(oc.OID)
	writeNames(&b, oc.Names)
	writeDesc(&b, oc.Desc)
	if oc.Obsolete {
		b.WriteString(" OBSOLETE")
	}
	writeOids(&b, "SUP", oc.Superiors)
	b.WriteString(" ")
	b.WriteString(oc.Kind.String())
	writeOids(&b, "MUST", oc.Must)
	writeOids(&b, "MAY", oc.May)
	writeExtensions(&b, oc.Extensions)
	b.WriteString(" )")
	return b.String()
}

// String formats the attribute type as an AttributeTypeDescription.
// Parsing the result yields an equal definition.
func (at *AttributeType) String() string {
	var b strings.Builder
	b.WriteString("( ")
	b.WriteString(at.OID)
	writeNames(&b, at.Names)
	writeDesc(&b, at.Desc)
	if at.Obsolete {
		b.WriteString(" OBSOLETE")
	}
	writeWoid(&b, "SUP", at.Superior)
	writeWoid(&b, "EQUALITY", at.Equality)
	writeWoid(&b, "ORDERING", at.Ordering)
	writeWoid(&b, "SUBSTR", at.Substring)
	if at.Syntax != "" {
		b.WriteString(" SYNTAX ")
		b.WriteString(at.Syntax)
		if at.SyntaxLen > 0 {
			b.WriteString("{" + strconv.Itoa(at.SyntaxLen) + "}")
		}
	}
	if at.SingleValue {
		b.WriteString(" SINGLE-VALUE")
	}
	if at.Collective {
		b.WriteString(" COLLECTIVE")
	}
	if at.NoUserMod {
		b.WriteString(" NO-USER-MODIFICATION")
	}
	if at.explicitUsage() {
		b.WriteString(" USAGE ")
		b.WriteString(at.Usage.String())
	}
	writeExtensions(&b, at.Extensions)
	b.WriteString(" )")
	return b.String()
}

// String formats the matching rule as a MatchingRuleDescription.
func (mr *MatchingRule) String() string {
	var b strings.Builder
	b.WriteString("( ")
	b.WriteString(mr.OID)
	writeNames(&b, mr.Names)
	writeDesc(&b, mr.Description)
	if mr.Obsolete {
		b.WriteString(" OBSOLETE")
	}
	writeWoid(&b, "SYNTAX", mr.Syntax)
	b.WriteString(" )")
	return b.String()
}

// String formats the syntax as a SyntaxDescription.
func (s *Syntax) String() string {
	var b strings.Builder
	b.WriteString("( ")
	b.WriteString(s.OID)
	writeDesc(&b, s.Description)
	writeExtensions(&b, s.Extensions)
	b.WriteString(" )")
	return b.String()
}

func writeNames(b *strings.Builder, names []string) {
	switch len(names) {
	case 0:
		return
	case 1:
		b.WriteString(" NAME " + quote(names[0]))
	default:
		b.WriteString(" NAME (")
		for _, n := range names {
			b.WriteString(" " + quote(n))
		}
		b.WriteString(" )")
	}
}

func writeDesc(b *strings.Builder, desc string) {
	if desc != "" {
		b.WriteString(" DESC " + quote(desc))
	}
}

func writeWoid(b *strings.Builder, keyword, value string) {
	if value != "" {
		b.WriteString(" " + keyword + " " + value)
	}
}

func writeOids(b *strings.Builder, keyword string, oids []string) {
	switch len(oids) {
	case 0:
		return
	case 1:
		b.WriteString(" " + keyword + " " + oids[0])
	default:
		b.WriteString(" " + keyword + " ( " + strings.Join(oids, " $ ") + " )")
	}
}

func writeExtensions(b *strings.Builder, exts []Extension) {
	for _, e := range exts {
		b.WriteString(" " + e.Name + " ")
		if len(e.Values) == 1 {
			b.WriteString(quote(e.Values[0]))
			continue
		}
		b.WriteString("(")
		for _, v := range e.Values {
			b.WriteString(" " + quote(v))
		}
		b.WriteString(" )")
	}
}

var quoteEscaper = strings.NewReplacer(`\`, `\5C`, `'`, `\27`)

func quote(s string) string {
	return "'" + quoteEscaper.Replace(s) + "'"
}
