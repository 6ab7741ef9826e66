package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfs4d/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the nfs4d configuration file.

Checks for syntax errors, unknown values and conflicting settings.

Examples:
  # Validate default config
  nfs4d config validate

  # Validate specific config file
  nfs4d config validate --config /etc/nfs4d/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)

	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Backend.Type == "memory" {
		warnings = append(warnings, "memory backend selected - attributes are lost on restart")
	}
	if cfg.Backend.Type == "badger" && cfg.Backend.Badger.InMemory {
		warnings = append(warnings, "badger runs in-memory - attributes are lost on restart")
	}
	if cfg.Server.MaxConnections == 0 {
		warnings = append(warnings, "server.max_connections is 0 (unlimited)")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", path)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	return nil
}
