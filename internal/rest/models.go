package rest

import (
	"time"

	"github.com/KilimcininKorOglu/obaschema/internal/ingest"
	"github.com/KilimcininKorOglu/obaschema/internal/schema"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status         string    `json:"status"`
	Version        string    `json:"version"`
	Uptime         string    `json:"uptime"`
	StartTime      time.Time `json:"startTime"`
	SchemaLoadedAt time.Time `json:"schemaLoadedAt"`
	PassID         string    `json:"passId"`
	AttributeTypes int       `json:"attributeTypes"`
	ObjectClasses  int       `json:"objectClasses"`
}

// ObjectClassJSON is an object class as served by the API.
type ObjectClassJSON struct {
	OID           string          `json:"oid"`
	Names         []string        `json:"names,omitempty"`
	Description   string          `json:"description,omitempty"`
	Obsolete      bool            `json:"obsolete,omitempty"`
	Kind          string          `json:"kind"`
	Superiors     []string        `json:"superiors,omitempty"`
	Must          []string        `json:"must,omitempty"`
	May           []string        `json:"may,omitempty"`
	EffectiveMust []string        `json:"effectiveMust,omitempty"`
	EffectiveMay  []string        `json:"effectiveMay,omitempty"`
	Extensions    []ExtensionJSON `json:"extensions,omitempty"`
	Definition    string          `json:"definition"`
}

// AttributeTypeJSON is an attribute type as served by the API.
type AttributeTypeJSON struct {
	OID          string          `json:"oid"`
	Names        []string        `json:"names,omitempty"`
	Description  string          `json:"description,omitempty"`
	Obsolete     bool            `json:"obsolete,omitempty"`
	Superior     string          `json:"superior,omitempty"`
	Equality     string          `json:"equality,omitempty"`
	Ordering     string          `json:"ordering,omitempty"`
	Substring    string          `json:"substring,omitempty"`
	Syntax       string          `json:"syntax"`
	SyntaxLength int             `json:"syntaxLength,omitempty"`
	SingleValue  bool            `json:"singleValue,omitempty"`
	Collective   bool            `json:"collective,omitempty"`
	NoUserMod    bool            `json:"noUserModification,omitempty"`
	Usage        string          `json:"usage"`
	Extensions   []ExtensionJSON `json:"extensions,omitempty"`
	Definition   string          `json:"definition"`
}

// ExtensionJSON is an X- extension.
type ExtensionJSON struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// MatchingRuleJSON is a matching rule from the catalog.
type MatchingRuleJSON struct {
	OID    string   `json:"oid"`
	Names  []string `json:"names,omitempty"`
	Syntax string   `json:"syntax"`
}

// SyntaxJSON is a syntax from the catalog.
type SyntaxJSON struct {
	OID         string `json:"oid"`
	Description string `json:"description,omitempty"`
	Validated   bool   `json:"validated"`
}

// ReportJSON summarizes the ingestion pass that built the current schema.
type ReportJSON struct {
	PassID            string           `json:"passId"`
	Directives        int              `json:"directives"`
	ObjectIdentifiers int              `json:"objectIdentifiers"`
	AttributeTypes    int              `json:"attributeTypes"`
	ObjectClasses     int              `json:"objectClasses"`
	MatchingRules     int              `json:"matchingRules"`
	Syntaxes          int              `json:"syntaxes"`
	Skipped           int              `json:"skipped"`
	Duration          string           `json:"duration"`
	Diagnostics       []DiagnosticJSON `json:"diagnostics"`
}

// DiagnosticJSON is one rejected definition.
type DiagnosticJSON struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Stage   string `json:"stage"`
	Code    string `json:"code"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

// ValidateEntryRequest is the body of POST /api/v1/schema/validate-entry.
type ValidateEntryRequest struct {
	DN         string              `json:"dn" binding:"required"`
	Attributes map[string][]string `json:"attributes" binding:"required"`
}

// ValidateEntryResponse reports a successful validation.
type ValidateEntryResponse struct {
	DN    string `json:"dn"`
	Valid bool   `json:"valid"`
}

// ReloadResponse reports the outcome of POST /api/v1/schema/reload.
type ReloadResponse struct {
	Swapped bool   `json:"swapped"`
	PassID  string `json:"passId"`
}

func convertExtensions(exts []schema.Extension) []ExtensionJSON {
	if len(exts) == 0 {
		return nil
	}
	out := make([]ExtensionJSON, len(exts))
	for i, e := range exts {
		out[i] = ExtensionJSON{Name: e.Name, Values: e.Values}
	}
	return out
}

func convertObjectClass(oc *schema.ObjectClass) ObjectClassJSON {
	return ObjectClassJSON{
		OID:           oc.OID,
		Names:         oc.Names,
		Description:   oc.Desc,
		Obsolete:      oc.Obsolete,
		Kind:          oc.Kind.String(),
		Superiors:     oc.Superiors,
		Must:          oc.Must,
		May:           oc.May,
		EffectiveMust: oc.EffectiveMust,
		EffectiveMay:  oc.EffectiveMay,
		Extensions:    convertExtensions(oc.Extensions),
		Definition:    oc.String(),
	}
}

func convertAttributeType(at *schema.AttributeType) AttributeTypeJSON {
	return AttributeTypeJSON{
		OID:          at.OID,
		Names:        at.Names,
		Description:  at.Desc,
		Obsolete:     at.Obsolete,
		Superior:     at.Superior,
		Equality:     at.Equality,
		Ordering:     at.Ordering,
		Substring:    at.Substring,
		Syntax:       at.Syntax,
		SyntaxLength: at.SyntaxLen,
		SingleValue:  at.SingleValue,
		Collective:   at.Collective,
		NoUserMod:    at.NoUserMod,
		Usage:        at.Usage.String(),
		Extensions:   convertExtensions(at.Extensions),
		Definition:   at.String(),
	}
}

func convertReport(r *ingest.Report) ReportJSON {
	out := ReportJSON{
		PassID:            r.PassID,
		Directives:        r.Directives,
		ObjectIdentifiers: r.ObjectIdentifiers,
		AttributeTypes:    r.AttributeTypes,
		ObjectClasses:     r.ObjectClasses,
		MatchingRules:     r.MatchingRules,
		Syntaxes:          r.Syntaxes,
		Skipped:           r.Skipped,
		Duration:          r.Duration.String(),
		Diagnostics:       make([]DiagnosticJSON, len(r.Diagnostics)),
	}
	for i, d := range r.Diagnostics {
		out.Diagnostics[i] = DiagnosticJSON{
			File:    d.File,
			Line:    d.Line,
			Kind:    d.Kind.String(),
			Stage:   d.Stage.String(),
			Code:    d.Reason,
			Token:   d.Token,
			Message: d.Message,
		}
	}
	return out
}
