package schema

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Syntax represents an LDAP syntax definition.
// Only existence matters to the registry; the validator is used when
// checking entry values.
type Syntax struct {
	OID         string
	Description string
	Extensions  []Extension
	Validator   func([]byte) bool
}

// Validate checks if the given value conforms to this syntax.
// Returns true if the value is valid or if no validator is defined.
func (s *Syntax) Validate(value []byte) bool {
	if s.Validator == nil {
		return true
	}
	return s.Validator(value)
}

// Syntax OIDs from RFC 4517 and friends.
const (
	SyntaxAttributeTypeDescription = "1.3.6.1.4.1.1466.115.121.1.3"
	SyntaxBitString                = "1.3.6.1.4.1.1466.115.121.1.6"
	SyntaxBoolean                  = "1.3.6.1.4.1.1466.115.121.1.7"
	SyntaxCountryString            = "1.3.6.1.4.1.1466.115.121.1.11"
	SyntaxDN                       = "1.3.6.1.4.1.1466.115.121.1.12"
	SyntaxDirectoryString          = "1.3.6.1.4.1.1466.115.121.1.15"
	SyntaxFacsimileNumber          = "1.3.6.1.4.1.1466.115.121.1.22"
	SyntaxGeneralizedTime          = "1.3.6.1.4.1.1466.115.121.1.24"
	SyntaxIA5String                = "1.3.6.1.4.1.1466.115.121.1.26"
	SyntaxInteger                  = "1.3.6.1.4.1.1466.115.121.1.27"
	SyntaxMatchingRuleDescription  = "1.3.6.1.4.1.1466.115.121.1.30"
	SyntaxNameAndOptionalUID       = "1.3.6.1.4.1.1466.115.121.1.34"
	SyntaxNumericString            = "1.3.6.1.4.1.1466.115.121.1.36"
	SyntaxObjectClassDescription   = "1.3.6.1.4.1.1466.115.121.1.37"
	SyntaxOID                      = "1.3.6.1.4.1.1466.115.121.1.38"
	SyntaxOctetString              = "1.3.6.1.4.1.1466.115.121.1.40"
	SyntaxPostalAddress            = "1.3.6.1.4.1.1466.115.121.1.41"
	SyntaxPrintableString          = "1.3.6.1.4.1.1466.115.121.1.44"
	SyntaxTelephoneNumber          = "1.3.6.1.4.1.1466.115.121.1.50"
	SyntaxLDAPSyntaxDescription    = "1.3.6.1.4.1.1466.115.121.1.54"
	SyntaxUUID                     = "1.3.6.1.1.16.1"
)

// ValidateDirectoryString accepts non-empty UTF-8.
func ValidateDirectoryString(value []byte) bool {
	return len(value) > 0 && utf8.Valid(value)
}

// ValidateInteger accepts an optionally signed run of digits.
func ValidateInteger(value []byte) bool {
	if len(value) > 0 && value[0] == '-' {
		value = value[1:]
	}
	if len(value) == 0 || (value[0] == '0' && len(value) > 1) {
		return false
	}
	for _, b := range value {
		if !isDigit(b) {
			return false
		}
	}
	return true
}

// ValidateBoolean accepts "TRUE" or "FALSE".
func ValidateBoolean(value []byte) bool {
	s := string(value)
	return s == "TRUE" || s == "FALSE"
}

// ValidateOctetString accepts anything.
func ValidateOctetString(value []byte) bool {
	return true
}

// ValidateIA5String accepts ASCII.
func ValidateIA5String(value []byte) bool {
	for _, b := range value {
		if b > 127 {
			return false
		}
	}
	return true
}

// ValidatePrintableString accepts the PrintableString character set.
func ValidatePrintableString(value []byte) bool {
	if len(value) == 0 {
		return false
	}
	for _, b := range value {
		if !isPrintableChar(b) {
			return false
		}
	}
	return true
}

func isPrintableChar(b byte) bool {
	if isLeadChar(b) || isDigit(b) {
		return true
	}
	switch b {
	case ' ', '\'', '(', ')', '+', ',', '-', '.', '/', ':', '=', '?':
		return true
	}
	return false
}

// ValidateCountryString accepts a two letter printable code.
func ValidateCountryString(value []byte) bool {
	return len(value) == 2 && ValidatePrintableString(value)
}

// ValidateNumericString accepts digits and spaces.
func ValidateNumericString(value []byte) bool {
	if len(value) == 0 {
		return false
	}
	for _, b := range value {
		if b != ' ' && !isDigit(b) {
			return false
		}
	}
	return true
}

// ValidateTelephoneNumber accepts digits and common separators.
func ValidateTelephoneNumber(value []byte) bool {
	if len(value) == 0 {
		return false
	}
	for _, b := range value {
		if !isDigit(b) && !strings.ContainsRune(" -()+.", rune(b)) {
			return false
		}
	}
	return true
}

// ValidateOIDValue accepts a numeric OID or a descriptor.
func ValidateOIDValue(value []byte) bool {
	s := string(value)
	return IsNumericOID(s) || IsValidDescriptor(s)
}

// ValidateDN performs a shallow check: every RDN has a type and a '='.
// The empty DN is valid.
func ValidateDN(value []byte) bool {
	s := string(value)
	if s == "" {
		return true
	}
	if !utf8.ValidString(s) {
		return false
	}
	for _, rdn := range splitUnescaped(s, ',') {
		typ, _, ok := strings.Cut(rdn, "=")
		typ = strings.TrimSpace(typ)
		if !ok || typ == "" {
			return false
		}
		if !IsNumericOID(typ) && !IsValidDescriptor(typ) {
			return false
		}
	}
	return true
}

func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

var generalizedTimeLayouts = []string{
	"20060102150405Z0700",
	"20060102150405.999999999Z0700",
	"200601021504Z0700",
	"2006010215Z0700",
}

// ValidateGeneralizedTime accepts the common GeneralizedTime forms.
func ValidateGeneralizedTime(value []byte) bool {
	s := string(value)
	for _, layout := range generalizedTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
