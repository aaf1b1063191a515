// Package ingest drives a schema ingestion pass: macro definitions in file
// order, parallel parsing of descriptions, then serial registration.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KilimcininKorOglu/obaschema/internal/logging"
	"github.com/KilimcininKorOglu/obaschema/internal/schema"
	"github.com/KilimcininKorOglu/obaschema/internal/schemafile"
)

// Options control a pass.
type Options struct {
	// Strict rejects unknown qualifiers.
	Strict bool
	// StopOnError ends the pass at the first rejected directive.
	StopOnError bool
	// AllowOperational accepts operational USAGE values. Set for schema
	// fetched from a server, which publishes its operational attributes.
	AllowOperational bool
	// Workers bounds parallel parsing. Values below 1 mean 1.
	Workers int
	// MaxDescriptionBytes caps a single description; 0 means unlimited.
	MaxDescriptionBytes int
}

// Stage names the step of a pass at which a directive was rejected.
type Stage int

const (
	// StageMacro covers objectidentifier directives.
	StageMacro Stage = iota
	// StageParse covers reading a description.
	StageParse
	// StageRegister covers adding a parsed definition to the schema.
	StageRegister
)

func (s Stage) String() string {
	switch s {
	case StageMacro:
		return "macro"
	case StageParse:
		return "parse"
	case StageRegister:
		return "register"
	default:
		return "unknown"
	}
}

// Diagnostic describes one rejected directive.
//
// Code is schema.CodeUnknown for failures outside the schema error
// taxonomy. Reason always holds the text shown to the user.
type Diagnostic struct {
	File    string
	Line    int
	Kind    schemafile.Kind
	Stage   Stage
	Code    schema.Code
	Reason  string
	Token   string
	Message string
}

// String renders the diagnostic the way slapd reports schema errors. A
// description that does not parse reads "file: line N: reason before
// token"; any other failure reads "file: line N: reason: "token"".
func (d Diagnostic) String() string {
	if d.Stage == StageParse && syntactic(d.Code) {
		token := d.Token
		if token == "" {
			token = "end of description"
		}
		return fmt.Sprintf("%s: line %d: %s before %s", d.File, d.Line, d.Reason, token)
	}
	if d.Token == "" {
		return fmt.Sprintf("%s: line %d: %s", d.File, d.Line, d.Reason)
	}
	return fmt.Sprintf("%s: line %d: %s: %q", d.File, d.Line, d.Reason, d.Token)
}

// Grammar returns the description grammar to print after the diagnostic,
// or "" when the failure was not a malformed directive.
func (d Diagnostic) Grammar() string {
	switch {
	case d.Stage == StageMacro && d.Code == schema.CodeUnknown && d.Reason == reasonMacroArgs:
		return schema.ObjectIdentifierGrammar
	case d.Stage != StageParse || !syntactic(d.Code):
		return ""
	case d.Kind == schemafile.KindAttributeType:
		return schema.AttributeTypeGrammar
	case d.Kind == schemafile.KindObjectClass:
		return schema.ObjectClassGrammar
	}
	return ""
}

// syntactic reports whether a parse failure is about the shape of the
// description rather than a value it names.
func syntactic(c schema.Code) bool {
	return c.IsGrammar() || c == schema.CodeInvalidName || c == schema.CodeQualifierNotSupported
}

// Report summarizes a pass.
type Report struct {
	PassID            string
	Directives        int
	ObjectIdentifiers int
	AttributeTypes    int
	ObjectClasses     int
	MatchingRules     int
	Syntaxes          int
	// Skipped counts directives with unknown keywords and those not
	// reached after StopOnError.
	Skipped     int
	Diagnostics []Diagnostic
	Duration    time.Duration
}

// OK reports whether every directive was accepted.
func (r *Report) OK() bool {
	return len(r.Diagnostics) == 0
}

// Pass ingests directives into a registry.
type Pass struct {
	reg     *schema.Registry
	catalog *schema.Catalog
	macros  *schema.MacroTable
	opts    Options
	logger  logging.Logger
}

// New returns a pass that commits into reg. catalog receives matching rule
// and syntax descriptions and may be nil when the input carries none.
// macros is extended by objectidentifier directives; nil starts empty.
func New(reg *schema.Registry, catalog *schema.Catalog, macros *schema.MacroTable, opts Options, logger logging.Logger) *Pass {
	if macros == nil {
		macros = schema.NewMacroTable()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pass{reg: reg, catalog: catalog, macros: macros, opts: opts, logger: logger}
}

// Macros returns the macro table the pass extends.
func (p *Pass) Macros() *schema.MacroTable {
	return p.macros
}

// outcome is the parse result of one directive, committed in input order.
type outcome struct {
	skip  bool
	err   error
	value interface{}
}

// Run ingests directives. Failures are collected in the report; the
// returned error is non-nil only when the pass could not finish: the
// context was cancelled, the registry ran out of capacity or is sealed.
func (p *Pass) Run(ctx context.Context, directives []schemafile.Directive) (*Report, error) {
	start := time.Now()
	report := &Report{PassID: logging.NewPassID(), Directives: len(directives)}
	log := p.logger.WithPassID(report.PassID)
	log.Info("ingestion pass started", "directives", len(directives), "workers", p.opts.Workers)

	results := make([]outcome, len(directives))

	// Macros are resolved against a working copy so that the caller's
	// table only sees definitions the commit loop actually reaches.
	work := p.macros.Clone()
	snapshot := work.Clone()
	dirty := false
	snapshots := make([]*schema.MacroTable, len(directives))
	for i, d := range directives {
		switch d.Kind {
		case schemafile.KindObjectIdentifier:
			results[i].err = defineMacro(work, d)
			dirty = true
		case schemafile.KindUnknown:
			results[i].skip = true
		default:
			if dirty {
				snapshot = work.Clone()
				dirty = false
			}
			snapshots[i] = snapshot
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i := range directives {
		if snapshots[i] == nil {
			continue
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i].value, results[i].err = p.parse(directives[i], snapshots[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}
	if err := ctx.Err(); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	for i, d := range directives {
		res := results[i]
		if res.skip {
			report.Skipped++
			log.Warn("unknown directive ignored", "file", d.File, "line", d.Line, "keyword", d.Keyword)
			continue
		}

		err := res.err
		stage := StageParse
		if err == nil {
			err = p.commit(d, res.value, report)
			stage = StageRegister
		}
		if err == nil {
			continue
		}
		if d.Kind == schemafile.KindObjectIdentifier {
			stage = StageMacro
		}

		diag := newDiagnostic(d, stage, err)
		report.Diagnostics = append(report.Diagnostics, diag)
		log.Error("definition rejected",
			"file", d.File,
			"line", d.Line,
			"kind", d.Kind.String(),
			"stage", diag.Stage.String(),
			"code", diag.Code.String(),
			"token", diag.Token,
			"err", err,
		)

		if diag.Code.Fatal() || errors.Is(err, schema.ErrRegistrySealed) {
			report.Skipped += len(directives) - i - 1
			report.Duration = time.Since(start)
			return report, fmt.Errorf("%s: %w", d.Location(), err)
		}
		if p.opts.StopOnError {
			report.Skipped += len(directives) - i - 1
			break
		}
	}

	report.Duration = time.Since(start)
	log.Info("ingestion pass finished",
		"attribute_types", report.AttributeTypes,
		"object_classes", report.ObjectClasses,
		"diagnostics", len(report.Diagnostics),
		"duration", report.Duration.String(),
	)
	return report, nil
}

var errMacroArgs = errors.New("objectidentifier takes a name and an OID")

const (
	reasonMacroArgs    = "ObjectIdentifier requires a name and an OID"
	reasonMacroDefined = "ObjectIdentifier previously defined"
)

func defineMacro(macros *schema.MacroTable, d schemafile.Directive) error {
	if len(d.Args) != 2 {
		return fmt.Errorf("%w, got %d arguments", errMacroArgs, len(d.Args))
	}
	return macros.Define(d.Args[0], d.Args[1])
}

func (p *Pass) parse(d schemafile.Directive, macros *schema.MacroTable) (interface{}, error) {
	opts := schema.ParseOptions{
		Macros:           macros,
		Strict:           p.opts.Strict,
		AllowOperational: p.opts.AllowOperational,
		MaxLength:        p.opts.MaxDescriptionBytes,
	}
	switch d.Kind {
	case schemafile.KindAttributeType:
		return schema.ParseAttributeType(d.Text, opts)
	case schemafile.KindObjectClass:
		return schema.ParseObjectClass(d.Text, opts)
	case schemafile.KindMatchingRule:
		return schema.ParseMatchingRule(d.Text, opts)
	case schemafile.KindSyntax:
		return schema.ParseSyntax(d.Text, opts)
	}
	return nil, fmt.Errorf("unsupported directive %q", d.Keyword)
}

func (p *Pass) commit(d schemafile.Directive, value interface{}, report *Report) error {
	if d.Kind == schemafile.KindObjectIdentifier {
		if err := p.macros.Define(d.Args[0], d.Args[1]); err != nil {
			return err
		}
		report.ObjectIdentifiers++
		return nil
	}

	switch v := value.(type) {
	case *schema.AttributeType:
		if err := p.reg.InsertAttributeType(v); err != nil {
			return err
		}
		report.AttributeTypes++
	case *schema.ObjectClass:
		if err := p.reg.InsertObjectClass(v); err != nil {
			return err
		}
		report.ObjectClasses++
	case *schema.MatchingRule:
		if p.catalog == nil {
			return errors.New("no catalog to receive matching rules")
		}
		if err := p.catalog.AddMatchingRule(v); err != nil {
			return err
		}
		report.MatchingRules++
	case *schema.Syntax:
		if p.catalog == nil {
			return errors.New("no catalog to receive syntaxes")
		}
		if err := p.catalog.AddSyntax(v); err != nil {
			return err
		}
		report.Syntaxes++
	}
	return nil
}

func newDiagnostic(d schemafile.Directive, stage Stage, err error) Diagnostic {
	diag := Diagnostic{
		File:    d.File,
		Line:    d.Line,
		Kind:    d.Kind,
		Stage:   stage,
		Code:    schema.CodeOf(err),
		Token:   schema.TokenOf(err),
		Message: err.Error(),
	}
	switch {
	case errors.Is(err, errMacroArgs):
		diag.Reason = reasonMacroArgs
	case errors.Is(err, schema.ErrMacroDefined):
		diag.Reason = reasonMacroDefined
	case diag.Code == schema.CodeUnknown:
		diag.Reason = err.Error()
	default:
		diag.Reason = diag.Code.String()
	}
	if stage == StageMacro && diag.Token == "" && len(d.Args) > 0 {
		diag.Token = d.Args[0]
	}
	return diag
}
