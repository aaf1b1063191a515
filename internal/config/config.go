// Package config provides configuration parsing for the schema tools.
package config

import "time"

// Config holds the complete configuration.
type Config struct {
	Schema  SchemaConfig `yaml:"schema"`
	Logging LogConfig    `yaml:"logging"`
	REST    RESTConfig   `yaml:"rest"`
	Fetch   FetchConfig  `yaml:"fetch"`
}

// SchemaConfig controls schema ingestion.
type SchemaConfig struct {
	// Files are read in order. ".ldif" files are read as subschema entries.
	Files []string `yaml:"files"`
	// Strict rejects unknown qualifiers instead of skipping them.
	Strict bool `yaml:"strict"`
	// StrictSuperiorKinds rejects object classes whose superiors have an
	// incompatible kind.
	StrictSuperiorKinds bool `yaml:"strictSuperiorKinds" default:"true"`
	// StopOnError aborts a pass at the first rejected definition.
	StopOnError bool `yaml:"stopOnError"`
	// Workers bounds parallel parsing.
	Workers int `yaml:"workers" default:"4"`
	// MaxDescriptionBytes caps the length of a single description.
	MaxDescriptionBytes int `yaml:"maxDescriptionBytes" default:"65536"`
	// MaxDefinitions caps the registry size; 0 means unlimited.
	MaxDefinitions int `yaml:"maxDefinitions"`
	// Macros are defined before any file is read.
	Macros map[string]string `yaml:"macros"`
	Reload ReloadConfig      `yaml:"reload"`
}

// ReloadConfig controls hot reload of the schema files.
type ReloadConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PollInterval time.Duration `yaml:"pollInterval" default:"1s"`
	Debounce     time.Duration `yaml:"debounce" default:"500ms"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"text"`
	Output string `yaml:"output" default:"stderr"`
}

// RESTConfig holds the schema browser configuration.
type RESTConfig struct {
	Address string `yaml:"address" default:":8080"`
	// Mode is the gin mode: release, debug or test.
	Mode string `yaml:"mode" default:"release"`
}

// FetchConfig describes the directory server a schema is fetched from.
type FetchConfig struct {
	URL          string        `yaml:"url" default:"ldap://localhost:389"`
	BindDN       string        `yaml:"bindDN"`
	BindPassword string        `yaml:"bindPassword"`
	StartTLS     bool          `yaml:"startTLS"`
	Insecure     bool          `yaml:"insecureSkipVerify"`
	Timeout      time.Duration `yaml:"timeout" default:"10s"`
	// SubschemaDN overrides the subschemaSubentry advertised by the root DSE.
	SubschemaDN string `yaml:"subschemaDN"`
}
