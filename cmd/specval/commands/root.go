// Package commands implements the CLI commands for specval.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/specval/cmd"
	"github.com/thoreinstein/specval/internal/config"
	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// metricsFile holds the value of the --metrics-file flag.
var metricsFile string

// cfg is the loaded configuration; configLoadErr is reported on first use.
var (
	cfg           *config.Config
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json (default from config, text)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("SPECVAL_CONFIG"),
		"config file (default: ./config.yaml or $XDG_CONFIG_HOME/specval/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "",
		"write Prometheus metrics to this file on exit")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("specval version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "specval",
	Short: "Validate statistical model specifications against versioned JSON schemas",
	Long: `specval checks workspace, model, measurement and patchset documents
against a versioned set of JSON schemas.

Documents may be JSON, YAML or TOML. Schemas are bundled with the binary;
point schema_root in the config file at a directory of "<version>/<name>"
documents to use your own set. Validation against a version other than the
default is allowed but logged as a warning.`,
	Example: `  # Validate a workspace (schema inferred from the file name)
  specval validate workspace.json

  # Validate a patch set against an explicit schema version
  specval validate --schema patchset.json --version 1.0.0 patches.yaml

  # List the bundled schemas
  specval schema list

  See Also: specval schema, specval doctor, specval version`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if configLoadErr != nil && !skipsConfig(cmd) {
			return errors.NewConfigError(configLoadErr)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// skipsConfig reports whether cmd runs without a valid configuration.
func skipsConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "gen-doc", "doctor":
		return true
	}
	return false
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("SPECVAL_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format := logFormat
	if format == "" && cfg != nil {
		format = cfg.LogFormat
	}
	parsed, err := logging.ParseFormat(format)
	if err != nil {
		return errors.NewUserError(err, "use --log-format text or json")
	}

	opts := logging.Options{
		Level:   level,
		Format:  parsed,
		Console: cmd.ErrOrStderr(),
	}
	if logFile != "" {
		// File output uses JSON format
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		opts.File = f
	}

	logger := logging.New(opts)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// Execute runs the root command, then flushes metrics when requested.
func Execute() error {
	err := rootCmd.Execute()
	if metricsFile != "" && current != nil {
		if werr := current.metrics.WriteFile(metricsFile); werr != nil {
			slog.Error("writing metrics file", "path", metricsFile, "error", werr)
		}
	}
	return err
}
