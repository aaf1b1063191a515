package schema

import (
	"errors"
	"fmt"
)

// Code identifies why a schema definition was rejected.
// The first twenty codes are the fixed schema error taxonomy shared by the
// parser and the registry; the remaining ones report grammar failures of the
// description text itself.
type Code int

// CodeUnknown is returned by CodeOf for errors that did not originate here.
const CodeUnknown Code = -1

const (
	CodeSuccess Code = iota
	CodeOutOfMemory
	CodeObjectClassNotFound
	CodeObjectClassBadSuperior
	CodeObjectClassOperational
	CodeDuplicateObjectClass
	CodeAttributeTypeNotFound
	CodeAttributeTypeBadUsage
	CodeAttributeTypeBadSuperior
	CodeAttributeTypeIncomplete
	CodeDuplicateAttributeType
	CodeMatchingRuleNotFound
	CodeDuplicateMatchingRule
	CodeSyntaxNotFound
	CodeSyntaxRequired
	CodeDuplicateSyntax
	CodeOIDOrNameRequired
	CodeQualifierNotSupported
	CodeInvalidName
	CodeOIDNotExpanded

	// CodeSyntaxError reports malformed description text.
	CodeSyntaxError
	// CodeMissingOID reports a description without an identifying OID token.
	CodeMissingOID
	// CodeDuplicateClause reports a clause given more than once.
	CodeDuplicateClause
	// CodeDescriptionTooLong reports a description over the configured
	// length limit. Only that description is rejected.
	CodeDescriptionTooLong
)

var codeText = [...]string{
	CodeSuccess:                  "Success",
	CodeOutOfMemory:              "Out of memory",
	CodeObjectClassNotFound:      "ObjectClass not found",
	CodeObjectClassBadSuperior:   "ObjectClass inappropriate SUPerior",
	CodeObjectClassOperational:   "ObjectClass operational",
	CodeDuplicateObjectClass:     "Duplicate objectClass",
	CodeAttributeTypeNotFound:    "AttributeType not found",
	CodeAttributeTypeBadUsage:    "AttributeType inappropriate USAGE",
	CodeAttributeTypeBadSuperior: "AttributeType inappropriate SUPerior",
	CodeAttributeTypeIncomplete:  "AttributeType SYNTAX or SUPerior required",
	CodeDuplicateAttributeType:   "Duplicate attributeType",
	CodeMatchingRuleNotFound:     "MatchingRule not found",
	CodeDuplicateMatchingRule:    "Duplicate matchingRule",
	CodeSyntaxNotFound:           "Syntax not found",
	CodeSyntaxRequired:           "Syntax required",
	CodeDuplicateSyntax:          "Duplicate ldapSyntax",
	CodeOIDOrNameRequired:        "OID or name required",
	CodeQualifierNotSupported:    "Qualifier not supported",
	CodeInvalidName:              "Invalid NAME",
	CodeOIDNotExpanded:           "OID could not be expanded",
	CodeSyntaxError:              "Unexpected token",
	CodeMissingOID:               "Missing OID",
	CodeDuplicateClause:          "Duplicate clause",
	CodeDescriptionTooLong:       "Description too long",
}

// String returns the diagnostic text for the code.
func (c Code) String() string {
	if c < 0 || int(c) >= len(codeText) {
		return "Unknown error"
	}
	return codeText[c]
}

// Fatal reports whether the code aborts a whole ingestion pass rather than
// just the offending definition.
func (c Code) Fatal() bool {
	return c == CodeOutOfMemory
}

// IsGrammar reports whether the code describes malformed description text
// as opposed to a rejected but well-formed definition.
func (c Code) IsGrammar() bool {
	return c >= CodeSyntaxError && c <= CodeDuplicateClause
}

// Error is the structured failure returned by the parser and the registry.
// Token holds the offending token or substring for diagnostics.
type Error struct {
	Code  Code
	Token string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Token != "" {
		return fmt.Sprintf("%s: %q", msg, e.Token)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so the Err* values below can
// be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrOutOfMemory              = &Error{Code: CodeOutOfMemory}
	ErrObjectClassNotFound      = &Error{Code: CodeObjectClassNotFound}
	ErrObjectClassBadSuperior   = &Error{Code: CodeObjectClassBadSuperior}
	ErrObjectClassOperational   = &Error{Code: CodeObjectClassOperational}
	ErrDuplicateObjectClass     = &Error{Code: CodeDuplicateObjectClass}
	ErrAttributeTypeNotFound    = &Error{Code: CodeAttributeTypeNotFound}
	ErrAttributeTypeBadUsage    = &Error{Code: CodeAttributeTypeBadUsage}
	ErrAttributeTypeBadSuperior = &Error{Code: CodeAttributeTypeBadSuperior}
	ErrAttributeTypeIncomplete  = &Error{Code: CodeAttributeTypeIncomplete}
	ErrDuplicateAttributeType   = &Error{Code: CodeDuplicateAttributeType}
	ErrMatchingRuleNotFound     = &Error{Code: CodeMatchingRuleNotFound}
	ErrDuplicateMatchingRule    = &Error{Code: CodeDuplicateMatchingRule}
	ErrSyntaxNotFound           = &Error{Code: CodeSyntaxNotFound}
	ErrSyntaxRequired           = &Error{Code: CodeSyntaxRequired}
	ErrDuplicateSyntax          = &Error{Code: CodeDuplicateSyntax}
	ErrOIDOrNameRequired        = &Error{Code: CodeOIDOrNameRequired}
	ErrQualifierNotSupported    = &Error{Code: CodeQualifierNotSupported}
	ErrInvalidName              = &Error{Code: CodeInvalidName}
	ErrOIDNotExpanded           = &Error{Code: CodeOIDNotExpanded}
	ErrSyntax                   = &Error{Code: CodeSyntaxError}
	ErrMissingOID               = &Error{Code: CodeMissingOID}
	ErrDuplicateClause          = &Error{Code: CodeDuplicateClause}
	ErrDescriptionTooLong       = &Error{Code: CodeDescriptionTooLong}
)

// Registry errors that are not part of the taxonomy.
var (
	ErrRegistrySealed = errors.New("schema: registry is sealed")
	ErrMacroDefined   = errors.New("schema: object identifier macro already defined")
)

// CodeOf extracts the taxonomy code from err.
// It returns CodeSuccess for nil and CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUnknown
}

// TokenOf returns the offending token carried by err, if any.
func TokenOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Token
	}
	return ""
}

func newError(code Code, token string) *Error {
	return &Error{Code: code, Token: token}
}
