package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KilimcininKorOglu/obaschema/internal/ingest"
	"github.com/KilimcininKorOglu/obaschema/internal/subschema"
)

func fetchCmd(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "Path to configuration file")
	envFile := fs.String("env-file", "", "Load environment variables from this file")
	url := fs.String("url", "", "Server URL")
	bindDN := fs.String("bind-dn", "", "Bind DN")
	bindPassword := fs.String("bind-password", "", "Bind password")
	startTLS := fs.Bool("starttls", false, "Upgrade the connection with StartTLS")
	subschemaDN := fs.String("subschema-dn", "", "Subschema entry DN")
	format := fs.String("format", "schema", "Output format: schema, ldif, json")
	output := fs.String("output", "", "Output file")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printFetchUsage(stdout)
		return 0
	}

	cfg, err := loadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "url":
			cfg.Fetch.URL = *url
		case "bind-dn":
			cfg.Fetch.BindDN = *bindDN
		case "bind-password":
			cfg.Fetch.BindPassword = *bindPassword
		case "starttls":
			cfg.Fetch.StartTLS = *startTLS
		case "subschema-dn":
			cfg.Fetch.SubschemaDN = *subschemaDN
		}
	})
	if !validate(cfg) {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(&cfg.Logging)
	dirs, err := subschema.Fetch(ctx, &cfg.Fetch, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	s, err := ingest.BuildFromServer(ctx, &cfg.Schema, dirs, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	printReport(stderr, s.Report, false)

	defs, err := collect(s, "all", nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	w, closeOutput, err := openOutput(*output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := writeDefinitions(w, defs, *format); err != nil {
		closeOutput()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := closeOutput(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if !s.Report.OK() {
		return 1
	}
	return 0
}
