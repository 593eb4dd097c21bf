package config

import (
	"strings"
	"time"
)

// Configuration keys to prevent typos and enable autocomplete
const (
	KeyHostsPath      = "hosts.path"
	KeyHostsSizeLimit = "hosts.size_limit"

	KeyRetryMaxAttempts = "retry.max_attempts"
	KeyRetryBaseDelay   = "retry.base_delay"

	KeyWatcherEnabled     = "watcher.enabled"
	KeyWatcherSettleDelay = "watcher.settle_delay"

	KeyBackupDir = "backup.dir"

	KeyLoggingLevel      = "logging.level"
	KeyLoggingFormat     = "logging.format"
	KeyLoggingOutput     = "logging.output"
	KeyLoggingMaxSizeMB  = "logging.max_size_mb"
	KeyLoggingMaxBackups = "logging.max_backups"

	KeyMetricsListen            = "metrics.listen"
	KeyMetricsSlowCallThreshold = "metrics.slow_call_threshold"
)

// Default values for configuration keys
var Defaults = map[string]interface{}{
	KeyHostsPath:                "",
	KeyHostsSizeLimit:           int64(1 << 20),
	KeyRetryMaxAttempts:         3,
	KeyRetryBaseDelay:           time.Second,
	KeyWatcherEnabled:           true,
	KeyWatcherSettleDelay:       500 * time.Millisecond,
	KeyBackupDir:                "",
	KeyLoggingLevel:             "info",
	KeyLoggingFormat:            "console",
	KeyLoggingOutput:            "stderr",
	KeyLoggingMaxSizeMB:         10,
	KeyLoggingMaxBackups:        3,
	KeyMetricsListen:            "",
	KeyMetricsSlowCallThreshold: time.Second,
}

// Default returns the configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Watcher.Enabled = true
	return cfg
}

// ApplyDefaults fills zero values. Watcher.Enabled is left alone since
// false is a valid choice.
func ApplyDefaults(cfg *Config) {
	if cfg.Hosts.SizeLimit == 0 {
		cfg.Hosts.SizeLimit = Defaults[KeyHostsSizeLimit].(int64)
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = Defaults[KeyRetryMaxAttempts].(int)
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = Defaults[KeyRetryBaseDelay].(time.Duration)
	}
	if cfg.Watcher.SettleDelay == 0 {
		cfg.Watcher.SettleDelay = Defaults[KeyWatcherSettleDelay].(time.Duration)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = Defaults[KeyLoggingLevel].(string)
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = Defaults[KeyLoggingFormat].(string)
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = Defaults[KeyLoggingOutput].(string)
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = Defaults[KeyLoggingMaxSizeMB].(int)
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = Defaults[KeyLoggingMaxBackups].(int)
	}
	if cfg.Metrics.SlowCallThreshold == 0 {
		cfg.Metrics.SlowCallThreshold = Defaults[KeyMetricsSlowCallThreshold].(time.Duration)
	}
	normalize(cfg)
}

func normalize(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
}
