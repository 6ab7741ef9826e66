package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/nfs4d/internal/logger"
	"github.com/marmos91/nfs4d/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// getConfigSource describes where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "./config.yaml"
	}
	return "defaults"
}
