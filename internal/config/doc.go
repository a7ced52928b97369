// Package config provides configuration management for the specval CLI.
//
// Configuration is read with Viper from config.yaml, searched in the
// current directory, $SPECVAL_CONFIG_DIR and $XDG_CONFIG_HOME/specval.
// Every key can be overridden with a SPECVAL_ prefixed environment
// variable (SPECVAL_SCHEMA_VERSION, SPECVAL_WATCH_DEBOUNCE, ...).
//
//	version: 1
//	schema_version: 1.0.0
//	schema_root: ~/schemas   # optional, bundled schemas when empty
//	log_format: text
//	metrics:
//	  namespace: specval
//	watch:
//	  debounce: 100ms
//
// Call [Init] once before [Load]. Loaded configurations are validated
// automatically; [Validate] may also be called directly.
package config
