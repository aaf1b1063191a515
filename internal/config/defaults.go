package config

import "github.com/creasty/defaults"

// DefaultConfig returns a Config with the default values from the struct
// tags applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic("config: invalid default tag: " + err.Error())
	}
	return cfg
}
