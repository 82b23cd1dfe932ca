// Package config loads the restored daemon's ambient configuration:
// logging, the TSS endpoint, device-connection retry/timeout, the
// baseband signer's tempfile directory, and the protocol-version cutover
// for progress-bucket drift compensation (spec.md §4.10). Styled exactly
// like the teacher's pkg/config: a Config struct with mapstructure/yaml
// tags, ApplyDefaults, Validate, and layered file/env/default loading.
// Restore session parameters proper (device UDID, IPSW path, Erase/Custom/
// Exclude/IgnoreErrors flags) are CLI-scope per spec.md's Non-goals and
// live in cmd/restored's flags, not here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the restored daemon's static configuration.
//
// Precedence (highest to lowest): environment variables
// (RESTORED_<SECTION>_<KEY>), configuration file, defaults. An environment
// variable overrides only a key that the loaded configuration file sets;
// when no configuration file is found, Load returns the defaults and does
// not read the environment. No CLI flag overrides a configuration key (the
// --config flag only selects the file).
//
// cmd/restored reads the Logging and Metrics sections and TSS.URL.
// TSS.Timeout and the Device, Baseband and Progress sections are loaded,
// defaulted and validated, but no engine package reads them.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	TSS      TSSConfig      `mapstructure:"tss" yaml:"tss"`
	Device   DeviceConfig   `mapstructure:"device" yaml:"device"`
	Baseband BasebandConfig `mapstructure:"baseband" yaml:"baseband"`
	Progress ProgressConfig `mapstructure:"progress" yaml:"progress"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior (internal/logger.Config).
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TSSConfig configures the ticket-signing-service client (pkg/transport.TSSClient).
type TSSConfig struct {
	// URL is the ticket server endpoint (c.TSSURL).
	URL string `mapstructure:"url" validate:"required,url" yaml:"url"`

	// Timeout bounds a single TSS round trip.
	Timeout time.Duration `mapstructure:"timeout" validate:"required,gt=0" yaml:"timeout"`
}

// DeviceConfig configures the restore daemon transport connection
// (spec.md §5's "restore-mode device acquisition: caller-driven (bounded)").
type DeviceConfig struct {
	// ConnectRetries bounds reconnect attempts when opening the transport.
	ConnectRetries int `mapstructure:"connect_retries" validate:"gte=0" yaml:"connect_retries"`

	// ConnectInterval is the delay between connect retries.
	ConnectInterval time.Duration `mapstructure:"connect_interval" validate:"gt=0" yaml:"connect_interval"`

	// SecondaryConnectRetries is the BootabilityBundle/firmware-updater
	// secondary data-port connect retry count (spec.md §5: 10x1s).
	SecondaryConnectRetries int `mapstructure:"secondary_connect_retries" validate:"gt=0" yaml:"secondary_connect_retries"`

	// SecondaryConnectInterval is the delay between secondary connect
	// retries.
	SecondaryConnectInterval time.Duration `mapstructure:"secondary_connect_interval" validate:"gt=0" yaml:"secondary_connect_interval"`

	// RebootObserveTimeout bounds how long the reboot path waits for the
	// external mode-change notifier (spec.md §5: 30s).
	RebootObserveTimeout time.Duration `mapstructure:"reboot_observe_timeout" validate:"gt=0" yaml:"reboot_observe_timeout"`
}

// BasebandConfig configures the baseband signer pipeline (pkg/baseband).
type BasebandConfig struct {
	// TempDir names a directory for the "bbfw_*.tmp" archive copy.
	// pkg/restore/basebanddata.go does not read it: it always creates the
	// copy in the OS default temp directory.
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir"`
}

// ProgressConfig holds the progress-bucket remapping setting. The remapper
// in pkg/restore/progress.go does not read it; it uses its own constants
// protocolVersionDriftCutover (14) and driftOperationThreshold (35).
type ProgressConfig struct {
	// ProtocolVersionCutover is the protocol version below which operation
	// codes above 35 get +1 compensation (spec.md §4.10; the default is 14).
	ProtocolVersionCutover int `mapstructure:"protocol_version_cutover" validate:"gt=0" yaml:"protocol_version_cutover"`
}

// MetricsConfig configures the optional Prometheus metrics endpoint
// (pkg/metrics). When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks cfg against its validate struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("RESTORED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "restored")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "restored")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
