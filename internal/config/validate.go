package config

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/logging"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the config format version is unknown.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidSchemaVersion indicates a malformed schema_version.
	ErrInvalidSchemaVersion = errors.New("invalid schema version")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidLogFormat indicates an unknown log_format.
	ErrInvalidLogFormat = errors.New("invalid log format")

	// ErrInvalidDebounce indicates a negative watch.debounce.
	ErrInvalidDebounce = errors.New("watch.debounce must not be negative")
)

var schemaVersionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, &FieldError{Field: "version", Value: strconv.Itoa(cfg.Version), Err: ErrUnsupportedVersion})
	}

	if !schemaVersionPattern.MatchString(cfg.SchemaVersion) {
		errs = append(errs, &FieldError{Field: "schema_version", Value: cfg.SchemaVersion, Err: ErrInvalidSchemaVersion})
	}

	if err := validatePath(cfg.SchemaRoot); err != nil {
		errs = append(errs, &FieldError{Field: "schema_root", Value: cfg.SchemaRoot, Err: err})
	}

	if _, err := logging.ParseFormat(cfg.LogFormat); err != nil {
		errs = append(errs, &FieldError{Field: "log_format", Value: cfg.LogFormat, Err: ErrInvalidLogFormat})
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, &FieldError{Field: "watch.debounce", Value: cfg.Watch.Debounce.String(), Err: ErrInvalidDebounce})
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents an error for a specific config key.
// It renders as "<reason>: <value>" and unwraps to the sentinel.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
