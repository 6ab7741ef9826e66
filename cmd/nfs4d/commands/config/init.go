package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfs4d/internal/cli/prompt"
	"github.com/marmos91/nfs4d/pkg/config"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file populated with defaults.

The file goes to --config, or $XDG_CONFIG_HOME/nfs4d/config.yaml. An
existing file is only replaced after confirmation or with --force.

Examples:
  # Create the default config
  nfs4d config init

  # Pick backend and ports interactively
  nfs4d config init --interactive

  # Overwrite an existing file without asking
  nfs4d config init --config ./config.yaml --force`,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file without asking")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for backend and ports")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("%s exists. Overwrite", path), initForce)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted; existing configuration kept.")
			return nil
		}
	}

	cfg := config.GetDefaultConfig()
	if initInteractive {
		if err := promptSettings(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	return nil
}

func promptSettings(cfg *config.Config) error {
	backendType, err := prompt.Select("Metadata backend", []string{"memory", "badger"})
	if err != nil {
		return err
	}
	cfg.Backend.Type = backendType

	if backendType == "badger" {
		path, err := prompt.Input("Badger database directory", "/var/lib/nfs4d")
		if err != nil {
			return err
		}
		cfg.Backend.Badger.Path = path
	}

	if cfg.Server.Port, err = prompt.InputPort("NFS port", cfg.Server.Port); err != nil {
		return err
	}

	if cfg.Metrics.Enabled, err = prompt.Confirm("Enable Prometheus metrics", false); err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port, err = prompt.InputPort("Metrics port", cfg.Metrics.Port); err != nil {
			return err
		}
	}
	return nil
}
