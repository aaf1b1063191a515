package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/KilimcininKorOglu/obaschema/internal/config"
	"github.com/KilimcininKorOglu/obaschema/internal/logging"
	"github.com/KilimcininKorOglu/obaschema/internal/schema"
	"github.com/KilimcininKorOglu/obaschema/internal/schemafile"
)

// Schema is the product of a completed load: a sealed registry and the
// tables it was built with.
type Schema struct {
	Registry *schema.Registry
	Catalog  *schema.Catalog
	Macros   *schema.MacroTable
	Report   *Report
	LoadedAt time.Time
}

// Load builds the default registry, ingests every configured schema file
// in order and seals the result. Unreadable files fail the load; rejected
// definitions are reported in Schema.Report.
func Load(ctx context.Context, cfg *config.SchemaConfig, logger logging.Logger) (*Schema, error) {
	var directives []schemafile.Directive
	for _, path := range cfg.Files {
		dirs, err := schemafile.ReadFile(path)
		if err != nil {
			return nil, err
		}
		directives = append(directives, dirs...)
	}
	return Build(ctx, cfg, directives, logger)
}

// Build ingests directives read from files on top of the built-in schema.
func Build(ctx context.Context, cfg *config.SchemaConfig, directives []schemafile.Directive, logger logging.Logger) (*Schema, error) {
	reg, catalog, err := schema.NewDefaultRegistry(policy(cfg))
	if err != nil {
		return nil, err
	}
	return build(ctx, cfg, reg, catalog, directives, false, logger)
}

// BuildFromServer ingests a subschema read back from a directory server.
// The server publishes its whole schema, built-ins and operational
// attributes included, so the registry starts empty.
func BuildFromServer(ctx context.Context, cfg *config.SchemaConfig, directives []schemafile.Directive, logger logging.Logger) (*Schema, error) {
	catalog := schema.NewCatalog()
	reg := schema.NewRegistry(catalog, policy(cfg))
	return build(ctx, cfg, reg, catalog, directives, true, logger)
}

func policy(cfg *config.SchemaConfig) schema.Policy {
	return schema.Policy{
		StrictSuperiorKinds: cfg.StrictSuperiorKinds,
		MaxDefinitions:      cfg.MaxDefinitions,
	}
}

func build(ctx context.Context, cfg *config.SchemaConfig, reg *schema.Registry, catalog *schema.Catalog, directives []schemafile.Directive, allowOperational bool, logger logging.Logger) (*Schema, error) {
	macros, err := configuredMacros(cfg.Macros)
	if err != nil {
		return nil, err
	}

	pass := New(reg, catalog, macros, Options{
		Strict:              cfg.Strict,
		StopOnError:         cfg.StopOnError,
		AllowOperational:    allowOperational,
		Workers:             cfg.Workers,
		MaxDescriptionBytes: cfg.MaxDescriptionBytes,
	}, logger)

	report, err := pass.Run(ctx, directives)
	if err != nil {
		return nil, err
	}
	reg.Seal()

	return &Schema{
		Registry: reg,
		Catalog:  catalog,
		Macros:   pass.Macros(),
		Report:   report,
		LoadedAt: time.Now(),
	}, nil
}

// configuredMacros defines the configured macros. Values may refer to
// other configured macros, so definitions are retried until no progress
// is made.
func configuredMacros(defs map[string]string) (*schema.MacroTable, error) {
	macros := schema.NewMacroTable()
	pending := make([]string, 0, len(defs))
	for name := range defs {
		pending = append(pending, name)
	}
	sort.Strings(pending)

	for len(pending) > 0 {
		var next []string
		var lastErr error
		for _, name := range pending {
			if err := macros.Define(name, defs[name]); err != nil {
				if schema.CodeOf(err) != schema.CodeOIDNotExpanded {
					return nil, fmt.Errorf("macro %s: %w", name, err)
				}
				next = append(next, name)
				lastErr = err
			}
		}
		if len(next) == len(pending) {
			return nil, fmt.Errorf("macro %s: %w", next[0], lastErr)
		}
		pending = next
	}
	return macros, nil
}
