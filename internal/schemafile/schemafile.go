// Package schemafile reads schema definitions from slapd-style schema files
// and from LDIF subschema entries.
package schemafile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reader errors
var (
	ErrFileNotFound = errors.New("schema file not found")
	ErrInvalidLDIF  = errors.New("invalid LDIF format")
)

// Kind identifies what a directive defines.
type Kind int

const (
	// KindUnknown is a directive with an unrecognised keyword.
	KindUnknown Kind = iota
	// KindObjectIdentifier defines an OID macro: objectidentifier <name> <oid>.
	KindObjectIdentifier
	// KindAttributeType carries an AttributeTypeDescription.
	KindAttributeType
	// KindObjectClass carries an ObjectClassDescription.
	KindObjectClass
	// KindMatchingRule carries a MatchingRuleDescription (LDIF only).
	KindMatchingRule
	// KindSyntax carries a SyntaxDescription (LDIF only).
	KindSyntax
)

// String returns the directive keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindObjectIdentifier:
		return "objectidentifier"
	case KindAttributeType:
		return "attributetype"
	case KindObjectClass:
		return "objectclass"
	case KindMatchingRule:
		return "matchingrule"
	case KindSyntax:
		return "ldapsyntax"
	default:
		return "unknown"
	}
}

var keywords = map[string]Kind{
	"objectidentifier": KindObjectIdentifier,
	"attributetype":    KindAttributeType,
	"attributetypes":   KindAttributeType,
	"objectclass":      KindObjectClass,
	"objectclasses":    KindObjectClass,
}

// Directive is one logical statement of a schema file.
type Directive struct {
	Kind Kind
	// Keyword is the keyword as written.
	Keyword string
	// Args holds the whitespace-separated arguments of an objectidentifier
	// directive.
	Args []string
	// Text is everything after the keyword, with continuation lines joined.
	Text string
	File string
	// Line is the line the directive starts on.
	Line int
}

// Location returns "file:line" for diagnostics.
func (d Directive) Location() string {
	return fmt.Sprintf("%s:%d", d.File, d.Line)
}

// ReadFile reads path as an LDIF subschema entry when it has an .ldif
// extension and as a slapd schema file otherwise.
func ReadFile(path string) ([]Directive, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".ldif") {
		return ReadLDIF(f, path)
	}
	return Read(f, path)
}

// Read parses slapd schema file syntax. Lines starting with '#' are
// comments, a line starting with whitespace continues the previous
// directive, and a blank line ends it.
func Read(r io.Reader, file string) ([]Directive, error) {
	var (
		out     []Directive
		current *Directive
		text    strings.Builder
		lineNo  int
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(text.String())
		if current.Kind == KindObjectIdentifier {
			current.Args = strings.Fields(current.Text)
		}
		out = append(out, *current)
		current = nil
		text.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if current == nil {
				return nil, fmt.Errorf("%s:%d: continuation line without a directive", file, lineNo)
			}
			text.WriteByte(' ')
			text.WriteString(strings.TrimSpace(line))
			continue
		}

		flush()
		keyword, rest, _ := strings.Cut(line, " ")
		if i := strings.IndexAny(keyword, "\t("); i > 0 {
			keyword, rest = keyword[:i], line[i:]
		}
		current = &Directive{
			Kind:    keywords[strings.ToLower(keyword)],
			Keyword: keyword,
			File:    file,
			Line:    lineNo,
		}
		text.WriteString(rest)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	flush()
	return out, nil
}
