package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields, mirroring the teacher's pkg/config.ApplyDefaults strategy: zero
// values are replaced, explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTSSDefaults(&cfg.TSS)
	applyDeviceDefaults(&cfg.Device)
	applyProgressDefaults(&cfg.Progress)
	applyMetricsDefaults(&cfg.Metrics)
	// BasebandConfig.TempDir has no default: empty means os.CreateTemp's
	// own default directory.
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTSSDefaults(cfg *TSSConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
}

func applyDeviceDefaults(cfg *DeviceConfig) {
	if cfg.ConnectInterval == 0 {
		cfg.ConnectInterval = time.Second
	}
	if cfg.SecondaryConnectRetries == 0 {
		// spec.md §5: "10 attempts x 1s" for secondary data-port connects.
		cfg.SecondaryConnectRetries = 10
	}
	if cfg.SecondaryConnectInterval == 0 {
		cfg.SecondaryConnectInterval = time.Second
	}
	if cfg.RebootObserveTimeout == 0 {
		// spec.md §5: "Reboot observation: 30s."
		cfg.RebootObserveTimeout = 30 * time.Second
	}
}

func applyProgressDefaults(cfg *ProgressConfig) {
	if cfg.ProtocolVersionCutover == 0 {
		cfg.ProtocolVersionCutover = 14
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// GetDefaultConfig returns a Config struct with all default values applied,
// used when no config file is present.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
