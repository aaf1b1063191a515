package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/KilimcininKorOglu/obaschema/internal/config"
	"github.com/KilimcininKorOglu/obaschema/internal/ingest"
	"github.com/KilimcininKorOglu/obaschema/internal/logging"
)

// schemaFlags are the options shared by check and dump.
type schemaFlags struct {
	configFile  string
	envFile     string
	strict      bool
	stopOnError bool
	workers     int
	logLevel    string
}

func (f *schemaFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configFile, "config", "", "Path to configuration file")
	fs.StringVar(&f.envFile, "env-file", "", "Load environment variables from this file")
	fs.BoolVar(&f.strict, "strict", false, "Reject unknown qualifiers")
	fs.BoolVar(&f.stopOnError, "stop-on-error", false, "Stop at the first rejected definition")
	fs.IntVar(&f.workers, "workers", 0, "Parallel parsers")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level")
}

// apply overlays the flags that were set on cfg. Files given as
// arguments replace the configured list.
func (f *schemaFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "strict":
			cfg.Schema.Strict = f.strict
		case "stop-on-error":
			cfg.Schema.StopOnError = f.stopOnError
		case "workers":
			cfg.Schema.Workers = f.workers
		case "log-level":
			cfg.Logging.Level = f.logLevel
		}
	})
	if fs.NArg() > 0 {
		cfg.Schema.Files = fs.Args()
	}
}

// loadConfig reads the env file and the config file, or returns the
// defaults when no config file is given.
func loadConfig(configFile, envFile string) (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// validate prints every validation error and reports whether cfg is valid.
func validate(cfg *config.Config) bool {
	errs := config.ValidateConfig(cfg)
	for _, err := range errs {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return len(errs) == 0
}

// newLogger builds the logger for a command. Commands that print to
// stdout keep the log on stderr even when the config says stdout.
func newLogger(cfg *config.LogConfig) logging.Logger {
	output := cfg.Output
	if output == "stdout" {
		output = "stderr"
	}
	return logging.New(logging.Config{Level: cfg.Level, Format: cfg.Format, Output: output})
}

// printReport writes one line per diagnostic, with the description grammar
// after a malformed one, followed by a summary.
func printReport(w io.Writer, r *ingest.Report, quiet bool) {
	for _, d := range r.Diagnostics {
		fmt.Fprintln(w, d.String())
		if g := d.Grammar(); g != "" {
			fmt.Fprint(w, g)
		}
	}
	if quiet {
		return
	}
	fmt.Fprintf(w, "pass %s: %d directives, %d object identifiers, %d attribute types, %d object classes, %d matching rules, %d syntaxes, %d skipped, %d rejected (%s)\n",
		r.PassID, r.Directives, r.ObjectIdentifiers, r.AttributeTypes, r.ObjectClasses,
		r.MatchingRules, r.Syntaxes, r.Skipped, len(r.Diagnostics), r.Duration.Round(time.Microsecond))
}

// openOutput returns stdout, or the named file.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
