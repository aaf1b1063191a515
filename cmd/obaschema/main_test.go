package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/obaschema/internal/config"
)

const badgeSchema = `objectidentifier myOrg 1.3.6.1.4.1.9999

attributetype ( myOrg:1 NAME 'badgeNumber'
	SUP name SINGLE-VALUE )

objectclass ( myOrg:2 NAME 'badgeHolder' SUP top AUXILIARY
	MAY badgeNumber )
`

const brokenSchema = `attributetype ( 1.3.6.1.4.1.9999.1 NAME 'orphan'
	SUP noSuchAttribute )
`

const malformedSchema = `objectclass ( 1.3.6.1.4.1.9999.2 NAME 'pair'
	MUST ( cn sn ) )
`

// runCLI runs the CLI with captured output.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errOut
	defer func() { stdout, stderr = oldOut, oldErr }()

	code := run(append([]string{"obaschema"}, args...))
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_NoArgs(t *testing.T) {
	code, out, _ := runCLI(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Usage:")
}

func TestRun_Help(t *testing.T) {
	for _, arg := range []string{"help", "-h", "--help"} {
		t.Run(arg, func(t *testing.T) {
			code, out, _ := runCLI(t, arg)
			assert.Equal(t, 0, code)
			assert.Contains(t, out, "obaschema <command>")
		})
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "unknown")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Unknown command: unknown")
}

func TestRun_CommandHelp(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"check", "-h"}, "obaschema check"},
		{[]string{"dump", "-help"}, "obaschema dump"},
		{[]string{"fetch", "-h"}, "obaschema fetch"},
		{[]string{"serve", "-h"}, "SIGHUP"},
		{[]string{"config"}, "validate"},
		{[]string{"version", "-h"}, "-short"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			code, out, _ := runCLI(t, tt.args...)
			assert.Equal(t, 0, code)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "obaschema version "+version)

	code, out, _ = runCLI(t, "version", "-short")
	assert.Equal(t, 0, code)
	assert.Equal(t, version+"\n", out)
}

func TestCheck(t *testing.T) {
	good := writeFile(t, "badge.schema", badgeSchema)
	bad := writeFile(t, "bad.schema", brokenSchema)

	t.Run("accepted", func(t *testing.T) {
		code, out, _ := runCLI(t, "check", "-log-level", "error", good)
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "1 attribute types, 1 object classes")
		assert.Contains(t, out, "0 rejected")
	})

	t.Run("rejected", func(t *testing.T) {
		code, out, _ := runCLI(t, "check", "-log-level", "error", "-q", bad)
		assert.Equal(t, 1, code)
		assert.Contains(t, out, bad+`: line 1: AttributeType not found: "noSuchAttribute"`)
		assert.NotContains(t, out, "AttributeTypeDescription")
		assert.NotContains(t, out, "rejected (")
	})

	t.Run("malformed", func(t *testing.T) {
		malformed := writeFile(t, "malformed.schema", malformedSchema)
		code, out, _ := runCLI(t, "check", "-log-level", "error", "-q", malformed)
		assert.Equal(t, 1, code)
		assert.Contains(t, out, malformed+": line 1: Unexpected token before sn\n")
		assert.Contains(t, out, `ObjectClassDescription = "(" whsp`)
	})

	t.Run("files from config", func(t *testing.T) {
		cfgPath := writeFile(t, "config.yaml", "schema:\n  files:\n    - "+good+"\nlogging:\n  level: error\n")
		code, _, _ := runCLI(t, "check", "-config", cfgPath)
		assert.Equal(t, 0, code)
	})

	t.Run("no files", func(t *testing.T) {
		code, _, errOut := runCLI(t, "check")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "no schema files")
	})

	t.Run("missing file", func(t *testing.T) {
		code, _, errOut := runCLI(t, "check", filepath.Join(t.TempDir(), "missing.schema"))
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "Error:")
	})

	t.Run("invalid flag value", func(t *testing.T) {
		code, _, errOut := runCLI(t, "check", "-workers", "0", good)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "schema.workers")
	})
}

func TestDump(t *testing.T) {
	good := writeFile(t, "badge.schema", badgeSchema)

	t.Run("schema format", func(t *testing.T) {
		code, out, _ := runCLI(t, "dump", "-log-level", "error", good)
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "attributetype ( 1.3.6.1.4.1.9999.1 NAME 'badgeNumber'")
		assert.Contains(t, out, "objectclass ( 1.3.6.1.4.1.9999.2 NAME 'badgeHolder'")
		assert.NotContains(t, out, "NAME 'top'")
	})

	t.Run("builtins", func(t *testing.T) {
		code, out, _ := runCLI(t, "dump", "-log-level", "error", "-builtins", "-kind", "objectclasses", good)
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "NAME 'top'")
		assert.NotContains(t, out, "attributetype ")
	})

	t.Run("ldif format", func(t *testing.T) {
		code, out, _ := runCLI(t, "dump", "-log-level", "error", "-format", "ldif", good)
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "dn: cn=schema\n")
		assert.Contains(t, out, "attributeTypes: ( 1.3.6.1.4.1.9999.1 NAME 'badgeNumber'")
	})

	t.Run("json format", func(t *testing.T) {
		code, out, _ := runCLI(t, "dump", "-log-level", "error", "-format", "json", good)
		require.Equal(t, 0, code)
		var defs definitions
		require.NoError(t, json.Unmarshal([]byte(out), &defs))
		assert.Len(t, defs.AttributeTypes, 1)
		assert.Len(t, defs.ObjectClasses, 1)
		assert.Empty(t, defs.Syntaxes)
	})

	t.Run("unknown kind", func(t *testing.T) {
		code, _, errOut := runCLI(t, "dump", "-log-level", "error", "-kind", "rules", good)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, `unknown kind "rules"`)
	})

	t.Run("unknown format", func(t *testing.T) {
		code, _, errOut := runCLI(t, "dump", "-log-level", "error", "-format", "xml", good)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, `unknown format "xml"`)
	})
}

func TestFetchInvalidConfig(t *testing.T) {
	code, _, errOut := runCLI(t, "fetch", "-url", "http://localhost")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "fetch.url")
}

func TestConfigCommands(t *testing.T) {
	t.Run("init round trip", func(t *testing.T) {
		code, out, _ := runCLI(t, "config", "init")
		require.Equal(t, 0, code)
		cfg, err := config.ParseConfig([]byte(out))
		require.NoError(t, err)
		def := config.DefaultConfig()
		assert.Equal(t, def.Schema.Workers, cfg.Schema.Workers)
		assert.Equal(t, def.Schema.StrictSuperiorKinds, cfg.Schema.StrictSuperiorKinds)
		assert.Equal(t, def.Schema.Reload.PollInterval, cfg.Schema.Reload.PollInterval)
		assert.Equal(t, def.REST, cfg.REST)
		assert.Equal(t, def.Fetch, cfg.Fetch)
	})

	t.Run("validate", func(t *testing.T) {
		valid := writeFile(t, "valid.yaml", "rest:\n  address: \":9090\"\n")
		code, out, _ := runCLI(t, "config", "validate", "-config", valid)
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "is valid")

		invalid := writeFile(t, "invalid.yaml", "logging:\n  level: loud\n")
		code, _, errOut := runCLI(t, "config", "validate", "-config", invalid)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "logging.level")

		code, _, errOut = runCLI(t, "config", "validate")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "-config is required")
	})

	t.Run("show masks secrets", func(t *testing.T) {
		path := writeFile(t, "fetch.yaml", "fetch:\n  bindDN: cn=admin,dc=example,dc=com\n  bindPassword: hunter2\n")
		code, out, _ := runCLI(t, "config", "show", "-config", path)
		require.Equal(t, 0, code)
		assert.NotContains(t, out, "hunter2")
		assert.Contains(t, out, `"bindPassword": "********"`)
	})

	t.Run("unknown subcommand", func(t *testing.T) {
		code, _, errOut := runCLI(t, "config", "frobnicate")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "Unknown config subcommand")
	})
}

func TestNewAppServesLoadedSchema(t *testing.T) {
	good := writeFile(t, "badge.schema", badgeSchema)
	cfg := config.DefaultConfig()
	cfg.Schema.Files = []string{good}
	cfg.Logging.Level = "error"
	cfg.REST.Address = "127.0.0.1:0"
	cfg.REST.Mode = "test"

	a, err := newApp(testContext(t), cfg, "")
	require.NoError(t, err)
	require.NotNil(t, a.reloader)

	_, ok := a.holder.Load().Registry.ObjectClass("badgeHolder")
	assert.True(t, ok)

	require.NoError(t, a.start(testContext(t)))
	assert.NotNil(t, a.server.Addr())
	a.handleSIGHUP()
	require.NoError(t, a.stop(testContext(t)))
}

// testContext returns a context canceled when the test finishes, mirroring
// testing.T.Context for toolchains older than Go 1.24.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
