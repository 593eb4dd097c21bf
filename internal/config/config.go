// Package config loads hosts-editor settings from a YAML file, HOSTS_EDITOR_*
// environment variables and command-line overrides. Values are fixed at
// startup; nothing is renegotiated while the engine runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override,
// e.g. HOSTS_EDITOR_RETRY_MAX_ATTEMPTS=5.
const EnvPrefix = "HOSTS_EDITOR"

// Config is the complete application configuration.
type Config struct {
	Hosts   HostsConfig   `mapstructure:"hosts" yaml:"hosts"`
	Retry   RetryConfig   `mapstructure:"retry" yaml:"retry"`
	Watcher WatcherConfig `mapstructure:"watcher" yaml:"watcher"`
	Backup  BackupConfig  `mapstructure:"backup" yaml:"backup"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	source string
}

// HostsConfig describes the managed file.
type HostsConfig struct {
	// Path overrides the platform default when set.
	Path      string `mapstructure:"path" yaml:"path"`
	SizeLimit int64  `mapstructure:"size_limit" yaml:"size_limit" validate:"gt=0"`
}

// RetryConfig is the bounded linear-backoff policy for disk access.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts" validate:"min=1,max=20"`
	BaseDelay   time.Duration `mapstructure:"base_delay" yaml:"base_delay" validate:"gte=0"`
}

// WatcherConfig controls external change detection.
type WatcherConfig struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled"`
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay" validate:"gt=0"`
}

// BackupConfig controls where backups are written.
type BackupConfig struct {
	// Dir defaults to the user's documents directory when empty.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LoggingConfig controls the diagnostic logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
	// Output is stderr, stdout or a file path.
	Output     string `mapstructure:"output" yaml:"output" validate:"required"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
}

// MetricsConfig controls operation statistics.
type MetricsConfig struct {
	// Listen enables a Prometheus /metrics endpoint when set, e.g. 127.0.0.1:9464.
	Listen            string        `mapstructure:"listen" yaml:"listen" validate:"omitempty,hostname_port"`
	SlowCallThreshold time.Duration `mapstructure:"slow_call_threshold" yaml:"slow_call_threshold" validate:"gt=0"`
}

// Load reads configuration from configPath, or from the default location
// when configPath is empty. A missing default file is not an error.
// overrides are applied last, keyed like KeyRetryMaxAttempts.
func Load(configPath string, overrides map[string]interface{}) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.source = v.ConfigFileUsed()

	// Unset keys already carry viper defaults; explicit zeros are validated.
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(ConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper, configPath string) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Source returns the file the configuration was read from, if any.
func (c *Config) Source() string {
	return c.source
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ConfigDir returns $XDG_CONFIG_HOME/hosts-editor, falling back to
// ~/.config/hosts-editor and finally the current directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "hosts-editor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "hosts-editor")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// WriteDefault writes the default configuration to path.
// An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}

	data, err := Default().YAML()
	if err != nil {
		return fmt.Errorf("failed to render default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# hosts-editor configuration\n# Environment overrides use the " + EnvPrefix + "_ prefix.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
