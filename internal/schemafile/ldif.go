package schemafile

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var ldifKinds = map[string]Kind{
	"attributetypes":      KindAttributeType,
	"objectclasses":       KindObjectClass,
	"matchingrules":       KindMatchingRule,
	"ldapsyntaxes":        KindSyntax,
	"olcattributetypes":   KindAttributeType,
	"olcobjectclasses":    KindObjectClass,
	"olcobjectidentifier": KindObjectIdentifier,
}

// olcOrdinal matches the "{n}" ordering prefix of cn=config values.
var olcOrdinal = regexp.MustCompile(`^\{\d+\}`)

// ReadLDIF extracts schema values from an LDIF subschema entry such as
// cn=schema or an OpenLDAP cn=config schema entry. Folded lines are joined
// per RFC 2849 and base64 ("::") values are decoded. Other attributes are
// ignored.
func ReadLDIF(r io.Reader, file string) ([]Directive, error) {
	var (
		out       []Directive
		attr      string
		value     strings.Builder
		startLine int
		lineNo    int
	)

	flush := func() error {
		if attr == "" {
			return nil
		}
		defer func() {
			attr = ""
			value.Reset()
		}()

		name, b64 := strings.CutSuffix(attr, ":")
		kind, ok := ldifKinds[strings.ToLower(name)]
		if !ok {
			return nil
		}
		text := strings.TrimSpace(value.String())
		if b64 {
			decoded, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				return fmt.Errorf("%w: %s:%d: %v", ErrInvalidLDIF, file, startLine, err)
			}
			text = strings.TrimSpace(string(decoded))
		}
		text = olcOrdinal.ReplaceAllString(text, "")

		d := Directive{Kind: kind, Keyword: name, Text: text, File: file, Line: startLine}
		if kind == KindObjectIdentifier {
			d.Args = strings.Fields(text)
		}
		out = append(out, d)
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.HasPrefix(line, " ") {
			if attr != "" {
				value.WriteString(line[1:])
			}
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, rest, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("%w: %s:%d: missing ':'", ErrInvalidLDIF, file, lineNo)
		}
		if strings.HasPrefix(rest, ":") {
			name += ":"
			rest = rest[1:]
		}
		attr = name
		startLine = lineNo
		value.WriteString(strings.TrimLeft(rest, " "))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}
