// Package config loads the YAML configuration of the schema tools.
//
// # Loading Configuration
//
//	cfg, err := config.LoadConfig("/etc/oba/schema.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
//	    // report every problem
//	}
//
// Missing keys take the values of the `default` struct tags. Unknown keys
// are rejected.
//
// # Environment Variables
//
// ${VAR} and ${VAR:-default} are substituted before parsing. LoadEnvFile
// reads a .env file into the environment first:
//
//	fetch:
//	  bindDN: cn=admin,dc=example,dc=com
//	  bindPassword: ${LDAP_PASSWORD}
//
// # Watching Files
//
// Watcher polls files and reports changes after a debounce interval. It
// drives schema hot reload.
package config
