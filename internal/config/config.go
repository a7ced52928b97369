// Package config provides configuration management for specval using Viper.
package config

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/internal/paths"
	"github.com/thoreinstein/specval/internal/schema"
)

// AppName is the application name used for config file naming.
const AppName = "specval"

// CurrentVersion is the config file format version.
const CurrentVersion = 1

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// SchemaVersion is the process-wide default schema version.
	SchemaVersion string `mapstructure:"schema_version" yaml:"schema_version"`

	// SchemaRoot is a directory of "{version}/{name}" schema documents.
	// Empty means the schemas bundled with the binary.
	SchemaRoot string `mapstructure:"schema_root" yaml:"schema_root"`

	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Init initializes Viper with default configuration.
// It resets any previous Viper state, so it may be called more than once.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	if dir := os.Getenv("SPECVAL_CONFIG_DIR"); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix("SPECVAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("version", CurrentVersion)
	viper.SetDefault("schema_version", schema.DefaultVersion)
	viper.SetDefault("schema_root", "")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("metrics.namespace", AppName)
	viper.SetDefault("watch.debounce", 100*time.Millisecond)
}

// Load reads and validates the configuration.
// If path is provided, it reads from that specific file and a missing file
// is an error. If path is empty, the default locations are searched and
// defaults are used when no file exists.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load; defaults apply
		case errors.Is(err, fs.ErrNotExist), errors.As(err, &notFound):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:       CurrentVersion,
		SchemaVersion: schema.DefaultVersion,
		LogFormat:     "text",
		Metrics:       MetricsConfig{Namespace: AppName},
		Watch:         WatchConfig{Debounce: 100 * time.Millisecond},
	}
}

// SchemaFS returns the file system holding the configured schema tree.
func (c *Config) SchemaFS() (fs.FS, error) {
	if c.SchemaRoot == "" {
		return schema.Bundled(), nil
	}
	root, err := paths.ExpandHome(c.SchemaRoot)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "schema_root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(paths.ErrInvalidPath, "schema_root %s is not a directory", root)
	}
	return os.DirFS(root), nil
}

// FileUsed returns the config file Load read, or "" when defaults applied.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
