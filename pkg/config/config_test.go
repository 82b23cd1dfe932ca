package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.TSS.Timeout)
	assert.Equal(t, 10, cfg.Device.SecondaryConnectRetries)
	assert.Equal(t, time.Second, cfg.Device.SecondaryConnectInterval)
	assert.Equal(t, 30*time.Second, cfg.Device.RebootObserveTimeout)
	assert.Equal(t, 14, cfg.Progress.ProtocolVersionCutover)
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "debug", Format: "json", Output: "/tmp/restored.log"},
		TSS:     TSSConfig{Timeout: 5 * time.Second},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level) // normalized, not overwritten
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/restored.log", cfg.Logging.Output)
	assert.Equal(t, 5*time.Second, cfg.TSS.Timeout)
}

func TestValidateRejectsMissingTSSURL(t *testing.T) {
	cfg := GetDefaultConfig()
	err := Validate(cfg)
	require.Error(t, err, "TSS.URL is required and has no default")
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.TSS.URL = "https://gs.apple.com/TSS/controller"
	require.NoError(t, Validate(cfg))
}
