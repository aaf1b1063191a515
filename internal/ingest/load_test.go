package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/obaschema/internal/config"
	"github.com/KilimcininKorOglu/obaschema/internal/logging"
	"github.com/KilimcininKorOglu/obaschema/internal/schema"
	"github.com/KilimcininKorOglu/obaschema/internal/schemafile"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func schemaConfig(files ...string) config.SchemaConfig {
	cfg := config.DefaultConfig().Schema
	cfg.Files = files
	return cfg
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	macros := filepath.Join(dir, "00-macros.schema")
	badge := filepath.Join(dir, "10-badge.schema")
	extra := filepath.Join(dir, "20-extra.ldif")
	writeFile(t, macros, "objectidentifier myOrg 1.3.6.1.4.1.9999\n")
	writeFile(t, badge, "attributetype ( myOrg:1.1 NAME 'badgeNumber' SUP name )\n")
	writeFile(t, extra, "dn: cn=schema\nobjectClasses: ( myOrg:2.1 NAME 'badgeHolder' SUP top AUXILIARY MAY badgeNumber )\n")

	cfg := schemaConfig(macros, badge, extra)
	s, err := Load(context.Background(), &cfg, logging.NewNop())
	require.NoError(t, err)

	assert.True(t, s.Report.OK(), "%v", s.Report.Diagnostics)
	assert.True(t, s.Registry.Sealed())
	assert.False(t, s.LoadedAt.IsZero())
	_, ok := s.Registry.ObjectClass("badgeHolder")
	assert.True(t, ok)
	_, ok = s.Macros.Lookup("myOrg")
	assert.True(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	cfg := schemaConfig(filepath.Join(t.TempDir(), "missing.schema"))
	_, err := Load(context.Background(), &cfg, nil)
	assert.Error(t, err)
}

func TestBuildConfiguredMacros(t *testing.T) {
	cfg := schemaConfig()
	cfg.Macros = map[string]string{
		"myAttrs": "myOrg:1",
		"myOrg":   "1.3.6.1.4.1.9999",
	}
	dirs := directives(t, "attributetype ( myAttrs:7 NAME 'configured' SUP name )\n")

	s, err := Build(context.Background(), &cfg, dirs, nil)
	require.NoError(t, err)
	at, ok := s.Registry.AttributeType("configured")
	require.True(t, ok)
	assert.Equal(t, "1.3.6.1.4.1.9999.1.7", at.OID)
}

func TestBuildUnresolvableMacros(t *testing.T) {
	cfg := schemaConfig()
	cfg.Macros = map[string]string{"a": "b:1", "b": "a:1"}

	_, err := Build(context.Background(), &cfg, nil, nil)
	require.Error(t, err)
	assert.Equal(t, schema.CodeOIDNotExpanded, schema.CodeOf(err))
}

func TestBuildFromServerAllowsOperational(t *testing.T) {
	cfg := schemaConfig()
	dirs := directives(t, "attributetype ( 1.2.3.1 NAME 'serverStamp' SYNTAX 1.3.6.1.4.1.1466.115.121.1.24 USAGE directoryOperation )\n")

	s, err := Build(context.Background(), &cfg, dirs, nil)
	require.NoError(t, err)
	require.Len(t, s.Report.Diagnostics, 1)
	assert.Equal(t, schema.CodeAttributeTypeBadUsage, s.Report.Diagnostics[0].Code)

	fetched := directives(t, `ldapsyntaxes ( 1.3.6.1.4.1.1466.115.121.1.24 DESC 'Generalized Time' )
`)
	fetched[0].Kind = schemafile.KindSyntax
	fetched = append(fetched, dirs...)

	s, err = BuildFromServer(context.Background(), &cfg, fetched, nil)
	require.NoError(t, err)
	require.True(t, s.Report.OK(), "%v", s.Report.Diagnostics)
	assert.Equal(t, 1, s.Registry.NumAttributeTypes())
	assert.True(t, s.Registry.Sealed())
}

func TestHolder(t *testing.T) {
	first := &Schema{}
	h := NewHolder(first)
	assert.Same(t, first, h.Load())

	second := &Schema{}
	h.Store(second)
	assert.Same(t, second, h.Load())
}

func TestReloaderReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.schema")
	writeFile(t, path, "attributetype ( 1.2.3.1 NAME 'badgeNumber' SUP name )\n")

	cfg := schemaConfig(path)
	initial, err := Load(context.Background(), &cfg, nil)
	require.NoError(t, err)
	holder := NewHolder(initial)

	r, err := NewReloader(cfg, holder, nil)
	require.NoError(t, err)

	// A duplicate definition keeps the current schema.
	writeFile(t, path, "attributetype ( 1.2.3.1 NAME 'badgeNumber' SUP name )\n\nattributetype ( 1.2.3.1 NAME 'again' SUP name )\n")
	swapped, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.Same(t, initial, holder.Load())

	// An unreadable file keeps it as well.
	require.NoError(t, os.Remove(path))
	swapped, err = r.Reload(context.Background())
	assert.Error(t, err)
	assert.False(t, swapped)
	assert.Same(t, initial, holder.Load())

	writeFile(t, path, "attributetype ( 1.2.3.2 NAME 'badgeColor' SUP name )\n")
	swapped, err = r.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, swapped)
	_, ok := holder.Load().Registry.AttributeType("badgeColor")
	assert.True(t, ok)
}

func TestReloaderWatchesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.schema")
	writeFile(t, path, "attributetype ( 1.2.3.1 NAME 'badgeNumber' SUP name )\n")

	cfg := schemaConfig(path)
	cfg.Reload = config.ReloadConfig{Enabled: true, PollInterval: 10 * time.Millisecond, Debounce: 20 * time.Millisecond}
	initial, err := Load(context.Background(), &cfg, nil)
	require.NoError(t, err)
	holder := NewHolder(initial)

	r, err := NewReloader(cfg, holder, nil)
	require.NoError(t, err)
	r.Start(context.Background())
	defer r.Stop()

	writeFile(t, path, "attributetype ( 1.2.3.1 NAME 'badgeNumber' SUP name )\n\nattributetype ( 1.2.3.2 NAME 'badgeColor' SUP name )\n")

	var found atomic.Bool
	require.Eventually(t, func() bool {
		s := holder.Load()
		if s == initial {
			return false
		}
		_, ok := s.Registry.AttributeType("badgeColor")
		found.Store(ok)
		return true
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, found.Load())
}
