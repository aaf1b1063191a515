package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/KilimcininKorOglu/obaschema/internal/config"
)

func configCmd(args []string) int {
	if len(args) == 0 {
		printConfigUsage(stdout)
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printConfigUsage(stdout)
		return 0
	case "validate":
		return configValidateCmd(args[1:])
	case "show":
		return configShowCmd(args[1:])
	case "init":
		return configInitCmd(args[1:])
	default:
		fmt.Fprintf(stderr, "Unknown config subcommand: %s\n", args[0])
		fmt.Fprintln(stderr, "Run 'obaschema config help' for usage.")
		return 1
	}
}

func configValidateCmd(args []string) int {
	fs := flag.NewFlagSet("config validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "Path to configuration file")
	envFile := fs.String("env-file", "", "Load environment variables from this file")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		fmt.Fprintln(stdout, "Validate a configuration file")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Usage:")
		fmt.Fprintln(stdout, "  obaschema config validate -config <file> [-env-file <file>]")
		return 0
	}
	if *configFile == "" {
		fmt.Fprintln(stderr, "Error: -config is required")
		return 1
	}

	cfg, err := loadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}
	if !validate(cfg) {
		return 1
	}
	fmt.Fprintf(stdout, "Configuration file %s is valid\n", *configFile)
	return 0
}

func configShowCmd(args []string) int {
	fs := flag.NewFlagSet("config show", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "Path to configuration file")
	envFile := fs.String("env-file", "", "Load environment variables from this file")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		fmt.Fprintln(stdout, "Print the effective configuration with secrets masked")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Usage:")
		fmt.Fprintln(stdout, "  obaschema config show [-config <file>] [-env-file <file>]")
		return 0
	}

	cfg, err := loadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(config.NewManager(cfg, *configFile).ToJSON()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func configInitCmd(args []string) int {
	fs := flag.NewFlagSet("config init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	output := fs.String("output", "", "Write to this file instead of standard output")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		fmt.Fprintln(stdout, "Print a default configuration file")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Usage:")
		fmt.Fprintln(stdout, "  obaschema config init [-output <file>]")
		return 0
	}

	w, closeOutput, err := openOutput(*output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err = enc.Encode(config.DefaultConfig())
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	if cerr := closeOutput(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
