package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/KilimcininKorOglu/obaschema/internal/ingest"
)

func dumpCmd(args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var sf schemaFlags
	sf.register(fs)
	format := fs.String("format", "schema", "Output format: schema, ldif, json")
	kind := fs.String("kind", "all", "Definitions to print")
	builtins := fs.Bool("builtins", false, "Include the built-in definitions")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printDumpUsage(stdout)
		return 0
	}

	cfg, err := loadConfig(sf.configFile, sf.envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	sf.apply(fs, cfg)
	if !validate(cfg) {
		return 1
	}

	s, err := ingest.Load(context.Background(), &cfg.Schema, newLogger(&cfg.Logging))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	for _, d := range s.Report.Diagnostics {
		fmt.Fprintln(stderr, d.String())
		if g := d.Grammar(); g != "" {
			fmt.Fprint(stderr, g)
		}
	}

	var skip map[string]bool
	if !*builtins {
		if skip, err = builtinOIDs(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	defs, err := collect(s, *kind, skip)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := writeDefinitions(stdout, defs, *format); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if !s.Report.OK() {
		return 1
	}
	return 0
}
