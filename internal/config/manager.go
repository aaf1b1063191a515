package config

import (
	"fmt"
	"sync"
)

// Manager holds the active configuration and replaces it on reload.
type Manager struct {
	config     *Config
	configFile string
	mu         sync.RWMutex
	onUpdate   func(old, new *Config)
}

// NewManager creates a manager for cfg loaded from configFile. configFile
// may be empty when the configuration came from defaults only.
func NewManager(cfg *Config, configFile string) *Manager {
	return &Manager{config: cfg, configFile: configFile}
}

// SetOnUpdate sets the callback run after a successful reload.
func (m *Manager) SetOnUpdate(fn func(old, new *Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// Config returns the current configuration.
func (m *Manager) Config() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// ConfigFile returns the config file path.
func (m *Manager) ConfigFile() string {
	return m.configFile
}

// Reload re-reads the config file. An invalid file leaves the current
// configuration in place.
func (m *Manager) Reload() error {
	if m.configFile == "" {
		return ErrMissingConfigFile
	}

	newConfig, err := LoadConfig(m.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if errs := ValidateConfig(newConfig); len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs[0])
	}

	m.mu.Lock()
	oldConfig := m.config
	m.config = newConfig
	onUpdate := m.onUpdate
	m.mu.Unlock()

	if onUpdate != nil {
		onUpdate(oldConfig, newConfig)
	}
	return nil
}

// ConfigJSON is the configuration with secrets masked, as served by the
// REST layer.
type ConfigJSON struct {
	Schema  SchemaConfigJSON `json:"schema"`
	Logging LogConfig        `json:"logging"`
	REST    RESTConfig       `json:"rest"`
	Fetch   FetchConfigJSON  `json:"fetch"`
}

// SchemaConfigJSON represents schema config in JSON.
type SchemaConfigJSON struct {
	Files               []string          `json:"files"`
	Strict              bool              `json:"strict"`
	StrictSuperiorKinds bool              `json:"strictSuperiorKinds"`
	StopOnError         bool              `json:"stopOnError"`
	Workers             int               `json:"workers"`
	MaxDescriptionBytes int               `json:"maxDescriptionBytes"`
	MaxDefinitions      int               `json:"maxDefinitions"`
	Macros              map[string]string `json:"macros,omitempty"`
	ReloadEnabled       bool              `json:"reloadEnabled"`
	ReloadPollInterval  string            `json:"reloadPollInterval"`
}

// FetchConfigJSON represents fetch config in JSON.
type FetchConfigJSON struct {
	URL          string `json:"url"`
	BindDN       string `json:"bindDN,omitempty"`
	BindPassword string `json:"bindPassword,omitempty"`
	StartTLS     bool   `json:"startTLS"`
	Timeout      string `json:"timeout"`
	SubschemaDN  string `json:"subschemaDN,omitempty"`
}

// ToJSON returns the current configuration with the bind password masked.
func (m *Manager) ToJSON() *ConfigJSON {
	cfg := m.Config()
	return &ConfigJSON{
		Schema: SchemaConfigJSON{
			Files:               append([]string(nil), cfg.Schema.Files...),
			Strict:              cfg.Schema.Strict,
			StrictSuperiorKinds: cfg.Schema.StrictSuperiorKinds,
			StopOnError:         cfg.Schema.StopOnError,
			Workers:             cfg.Schema.Workers,
			MaxDescriptionBytes: cfg.Schema.MaxDescriptionBytes,
			MaxDefinitions:      cfg.Schema.MaxDefinitions,
			Macros:              cfg.Schema.Macros,
			ReloadEnabled:       cfg.Schema.Reload.Enabled,
			ReloadPollInterval:  cfg.Schema.Reload.PollInterval.String(),
		},
		Logging: cfg.Logging,
		REST:    cfg.REST,
		Fetch: FetchConfigJSON{
			URL:          cfg.Fetch.URL,
			BindDN:       cfg.Fetch.BindDN,
			BindPassword: maskSecret(cfg.Fetch.BindPassword),
			StartTLS:     cfg.Fetch.StartTLS,
			Timeout:      cfg.Fetch.Timeout.String(),
			SubschemaDN:  cfg.Fetch.SubschemaDN,
		},
	}
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
