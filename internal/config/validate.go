package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/KilimcininKorOglu/obaschema/internal/schema"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig validates the configuration and returns every problem
// found. An empty slice indicates the configuration is valid.
func ValidateConfig(config *Config) []error {
	var errs []error
	errs = append(errs, validateSchemaConfig(&config.Schema)...)
	errs = append(errs, validateLogConfig(&config.Logging)...)
	errs = append(errs, validateRESTConfig(&config.REST)...)
	errs = append(errs, validateFetchConfig(&config.Fetch)...)
	return errs
}

func validateSchemaConfig(config *SchemaConfig) []error {
	var errs []error

	for i, f := range config.Files {
		if strings.TrimSpace(f) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("schema.files[%d]", i),
				Message: "must not be empty",
			})
		}
	}
	if config.Workers < 1 {
		errs = append(errs, ValidationError{Field: "schema.workers", Message: "must be at least 1"})
	}
	if config.MaxDescriptionBytes < 0 {
		errs = append(errs, ValidationError{Field: "schema.maxDescriptionBytes", Message: "must be non-negative"})
	}
	if config.MaxDefinitions < 0 {
		errs = append(errs, ValidationError{Field: "schema.maxDefinitions", Message: "must be non-negative"})
	}

	// Macro values may refer to other macros, so only names are checked here.
	for name := range config.Macros {
		if !schema.IsValidDescriptor(name) {
			errs = append(errs, ValidationError{
				Field:   "schema.macros." + name,
				Message: "macro name must be a descriptor",
			})
		}
	}

	if config.Reload.Enabled {
		if config.Reload.PollInterval <= 0 {
			errs = append(errs, ValidationError{Field: "schema.reload.pollInterval", Message: "must be positive"})
		}
		if config.Reload.Debounce < 0 {
			errs = append(errs, ValidationError{Field: "schema.reload.debounce", Message: "must be non-negative"})
		}
		if len(config.Files) == 0 {
			errs = append(errs, ValidationError{Field: "schema.reload.enabled", Message: "requires schema.files"})
		}
	}
	return errs
}

func validateLogConfig(config *LogConfig) []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if config.Level != "" && !validLevels[strings.ToLower(config.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "must be debug, info, warn, or error",
		})
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if config.Format != "" && !validFormats[strings.ToLower(config.Format)] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "must be text or json",
		})
	}

	if config.Output != "" && config.Output != "stdout" && config.Output != "stderr" {
		dir := filepath.Dir(config.Output)
		if !filepath.IsAbs(config.Output) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: "must be stdout, stderr, or an absolute file path",
			})
		} else if _, err := os.Stat(dir); os.IsNotExist(err) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: fmt.Sprintf("directory %s does not exist", dir),
			})
		}
	}
	return errs
}

func validateRESTConfig(config *RESTConfig) []error {
	var errs []error
	if config.Address != "" {
		if err := validateAddress(config.Address); err != nil {
			errs = append(errs, ValidationError{Field: "rest.address", Message: err.Error()})
		}
	}
	switch config.Mode {
	case "", "release", "debug", "test":
	default:
		errs = append(errs, ValidationError{Field: "rest.mode", Message: "must be release, debug, or test"})
	}
	return errs
}

func validateFetchConfig(config *FetchConfig) []error {
	var errs []error
	if config.URL != "" {
		u, err := url.Parse(config.URL)
		if err != nil {
			errs = append(errs, ValidationError{Field: "fetch.url", Message: err.Error()})
		} else if u.Scheme != "ldap" && u.Scheme != "ldaps" && u.Scheme != "ldapi" {
			errs = append(errs, ValidationError{Field: "fetch.url", Message: "scheme must be ldap, ldaps, or ldapi"})
		}
		if err == nil && u.Scheme == "ldaps" && config.StartTLS {
			errs = append(errs, ValidationError{Field: "fetch.startTLS", Message: "cannot be combined with ldaps"})
		}
	}
	if config.BindPassword != "" && config.BindDN == "" {
		errs = append(errs, ValidationError{Field: "fetch.bindDN", Message: "required when bindPassword is set"})
	}
	if err := validateDN(config.BindDN); err != nil {
		errs = append(errs, ValidationError{Field: "fetch.bindDN", Message: err.Error()})
	}
	if err := validateDN(config.SubschemaDN); err != nil {
		errs = append(errs, ValidationError{Field: "fetch.subschemaDN", Message: err.Error()})
	}
	if config.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "fetch.timeout", Message: "must be non-negative"})
	}
	return errs
}

// validateAddress validates a network address in host:port format.
func validateAddress(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %v", err)
	}
	if port == "" {
		return fmt.Errorf("port is required")
	}
	return nil
}

// validateDN checks that a non-empty DN has a valid syntax.
func validateDN(dn string) error {
	if dn == "" {
		return nil
	}
	if !schema.ValidateDN([]byte(dn)) {
		return fmt.Errorf("invalid DN: %s", dn)
	}
	return nil
}
