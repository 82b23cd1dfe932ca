package commands

import (
	"fmt"

	"github.com/restoreos/restored/internal/logger"
	"github.com/restoreos/restored/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// LoadConfig resolves the config file (explicit --config or the default
// location) and loads it, falling back to defaults when no file is present.
func LoadConfig() (*config.Config, error) {
	configFile := GetConfigFile()
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
