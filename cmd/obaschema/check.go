package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/KilimcininKorOglu/obaschema/internal/ingest"
)

func checkCmd(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var sf schemaFlags
	sf.register(fs)
	quiet := fs.Bool("q", false, "Print only diagnostics")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printCheckUsage(stdout)
		return 0
	}

	cfg, err := loadConfig(sf.configFile, sf.envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	sf.apply(fs, cfg)
	if len(cfg.Schema.Files) == 0 {
		fmt.Fprintln(stderr, "Error: no schema files given")
		return 1
	}
	if !validate(cfg) {
		return 1
	}

	s, err := ingest.Load(context.Background(), &cfg.Schema, newLogger(&cfg.Logging))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	printReport(stdout, s.Report, *quiet)
	if !s.Report.OK() {
		return 1
	}
	return 0
}
