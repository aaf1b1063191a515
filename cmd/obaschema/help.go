package main

import (
	"fmt"
	"io"
)

func printUsage(w io.Writer) {
	fmt.Fprint(w, `obaschema - LDAP schema loader and browser

Usage:
  obaschema <command> [options]

Commands:
  check       Load schema files and report rejected definitions
  dump        Print the loaded schema in canonical form
  fetch       Read the schema published by a directory server
  serve       Serve the loaded schema over HTTP
  config      Configuration management
  version     Show version information

Use "obaschema <command> -h" for more information about a command.
`)
}

const commonOptions = `  -config string
        Path to configuration file
  -env-file string
        Load environment variables from this file before reading the config
  -strict
        Reject unknown qualifiers
  -stop-on-error
        Stop at the first rejected definition
  -workers int
        Parallel parsers (overrides config)
  -log-level string
        Log level: debug, info, warn, error (overrides config)
`

func printCheckUsage(w io.Writer) {
	fmt.Fprint(w, `Load schema files and report rejected definitions

Usage:
  obaschema check [options] [file...]

Files given on the command line replace schema.files from the config.
Files ending in .ldif are read as subschema entries.

Options:
`+commonOptions+`  -q    Print only diagnostics
  -h, -help
        Show this help message

Exit status is 0 when every definition was accepted, 1 otherwise.
`)
}

func printDumpUsage(w io.Writer) {
	fmt.Fprint(w, `Print the loaded schema in canonical form

Usage:
  obaschema dump [options] [file...]

Options:
`+commonOptions+`  -format string
        Output format: schema, ldif, json (default "schema")
  -kind string
        Definitions to print: all, attributetypes, objectclasses (default "all")
  -builtins
        Include the built-in definitions
  -h, -help
        Show this help message
`)
}

func printFetchUsage(w io.Writer) {
	fmt.Fprint(w, `Read the schema published by a directory server

Usage:
  obaschema fetch [options]

Options:
  -config string
        Path to configuration file
  -env-file string
        Load environment variables from this file before reading the config
  -url string
        Server URL (overrides config)
  -bind-dn string
        Bind DN (overrides config)
  -bind-password string
        Bind password (overrides config; prefer ${VAR} in the config file)
  -starttls
        Upgrade the connection with StartTLS
  -subschema-dn string
        Subschema entry DN (default: read from the root DSE)
  -format string
        Output format: schema, ldif, json (default "schema")
  -output string
        Write to this file instead of standard output
  -h, -help
        Show this help message
`)
}

func printServeUsage(w io.Writer) {
	fmt.Fprint(w, `Serve the loaded schema over HTTP

Usage:
  obaschema serve [options]

Options:
  -config string
        Path to configuration file
  -env-file string
        Load environment variables from this file before reading the config
  -address string
        Listen address (overrides config, default ":8080")
  -log-level string
        Log level: debug, info, warn, error (overrides config)
  -h, -help
        Show this help message

Signals:
  SIGHUP            Reload the schema files
  SIGINT, SIGTERM   Shut down gracefully
`)
}

func printConfigUsage(w io.Writer) {
	fmt.Fprint(w, `Configuration management

Usage:
  obaschema config <subcommand> [options]

Subcommands:
  validate    Validate a configuration file
  show        Print the effective configuration with secrets masked
  init        Print a default configuration file
`)
}

func printVersionUsage(w io.Writer) {
	fmt.Fprint(w, `Show version information

Usage:
  obaschema version [options]

Options:
  -short
        Show only version number
  -h, -help
        Show this help message
`)
}
