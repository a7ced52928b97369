package doctor

import (
	"strings"

	"github.com/thoreinstein/specval/internal/config"
	"github.com/thoreinstein/specval/internal/paths"
	"github.com/thoreinstein/specval/internal/schema"
)

// ConfigCheck reports whether the configuration loaded cleanly.
type ConfigCheck struct {
	cfg     *config.Config
	loadErr error
	file    string
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck reports on a configuration loaded from file ("" when
// defaults were used) with the given load error.
func NewConfigCheck(cfg *config.Config, file string, loadErr error) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, file: file, loadErr: loadErr}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string { return "config" }

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string { return "config" }

// Run executes the configuration check.
func (c *ConfigCheck) Run() *CheckResult {
	if c.loadErr != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: c.loadErr.Error(),
			FixHint: "Fix the config file or pass --config with a valid one",
		}
	}

	details := map[string]any{
		"schema_version": c.cfg.SchemaVersion,
		"schema_root":    c.cfg.SchemaRoot,
		"user_schemas":   paths.SchemaDataDir(),
	}
	if c.file == "" {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "no config file found, using defaults",
			Details: details,
		}
	}
	details["file"] = c.file
	return &CheckResult{
		Status:  SeverityPass,
		Message: "config loaded from " + c.file,
		Details: details,
	}
}

// SchemaSetCheck verifies one schema version: defs.json is present and
// every named schema loads and compiles.
type SchemaSetCheck struct {
	validator *schema.Validator
	version   string
}

var _ Check = (*SchemaSetCheck)(nil)

// NewSchemaSetCheck creates a check for version.
func NewSchemaSetCheck(v *schema.Validator, version string) *SchemaSetCheck {
	return &SchemaSetCheck{validator: v, version: version}
}

// Name returns the unique identifier for this check.
func (c *SchemaSetCheck) Name() string { return "schemas-" + c.version }

// Category returns the grouping for this check.
func (c *SchemaSetCheck) Category() string { return "schemas" }

// Run executes the schema set check.
func (c *SchemaSetCheck) Run() *CheckResult {
	names, err := c.validator.Schemas(c.version)
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: "cannot list schemas: " + err.Error(),
			FixHint: "Each version directory needs defs.json and at least one <name>.json",
		}
	}

	var failed []string
	details := map[string]any{"schemas": len(names)}
	for _, name := range names {
		if err := c.validator.Compile(name, c.version); err != nil {
			failed = append(failed, name)
			details[name] = err.Error()
		}
	}

	switch {
	case len(failed) > 0:
		return &CheckResult{
			Status:  SeverityError,
			Message: "schemas failed to compile: " + strings.Join(failed, ", "),
			Details: details,
			FixHint: "Run 'specval schema show <name> --version " + c.version + "' to inspect them",
		}
	case c.version != c.validator.DefaultVersion():
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "all schemas compile (not the default version)",
			Details: details,
		}
	default:
		return &CheckResult{
			Status:  SeverityPass,
			Message: "all schemas compile",
			Details: details,
		}
	}
}

// DefaultVersionCheck verifies the configured default version exists.
type DefaultVersionCheck struct {
	validator *schema.Validator
}

var _ Check = (*DefaultVersionCheck)(nil)

// NewDefaultVersionCheck creates a default version check.
func NewDefaultVersionCheck(v *schema.Validator) *DefaultVersionCheck {
	return &DefaultVersionCheck{validator: v}
}

// Name returns the unique identifier for this check.
func (c *DefaultVersionCheck) Name() string { return "default-version" }

// Category returns the grouping for this check.
func (c *DefaultVersionCheck) Category() string { return "schemas" }

// Run executes the default version check.
func (c *DefaultVersionCheck) Run() *CheckResult {
	want := c.validator.DefaultVersion()
	versions, err := c.validator.Versions()
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: "cannot list schema versions: " + err.Error(),
			FixHint: "Check schema_root in your config",
		}
	}
	for _, v := range versions {
		if v == want {
			return &CheckResult{
				Status:  SeverityPass,
				Message: "default version " + want + " is available",
				Details: map[string]any{"versions": versions},
			}
		}
	}
	return &CheckResult{
		Status:  SeverityError,
		Message: "default version " + want + " is not in the schema set",
		Details: map[string]any{"versions": versions},
		FixHint: "Set schema_version to one of the available versions",
	}
}

// SchemaChecks returns a DefaultVersionCheck followed by one SchemaSetCheck
// per available version.
func SchemaChecks(v *schema.Validator) []Check {
	checks := []Check{NewDefaultVersionCheck(v)}
	versions, err := v.Versions()
	if err != nil {
		return checks
	}
	for _, version := range versions {
		checks = append(checks, NewSchemaSetCheck(v, version))
	}
	return checks
}
