package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfs4d/internal/cli/output"
	"github.com/marmos91/nfs4d/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the configuration nfs4d would run with: the config file
merged with environment overrides and defaults.

Examples:
  # Summary table
  nfs4d config show

  # Full configuration as YAML
  nfs4d config show --output yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}

	if format == output.FormatTable {
		return output.SimpleTable(cmd.OutOrStdout(), summarize(cfg))
	}
	return output.NewPrinter(cmd.OutOrStdout(), format).Print(cfg)
}

func summarize(cfg *config.Config) [][2]string {
	rows := [][2]string{
		{"Listen", fmt.Sprintf("%s:%d", cfg.Server.BindAddr, cfg.Server.Port)},
		{"Max connections", maxConns(cfg.Server.MaxConnections)},
		{"Read timeout", cfg.Server.Timeouts.Read.String()},
		{"Write timeout", cfg.Server.Timeouts.Write.String()},
		{"Shutdown timeout", cfg.Server.ShutdownTimeout.String()},
		{"Backend", cfg.Backend.Type},
	}
	if cfg.Backend.Type == "badger" {
		path := cfg.Backend.Badger.Path
		if cfg.Backend.Badger.InMemory {
			path = "(in memory)"
		}
		rows = append(rows, [2]string{"Badger path", path})
	}
	rows = append(rows,
		[2]string{"Log level", cfg.Logging.Level},
		[2]string{"Log format", cfg.Logging.Format},
		[2]string{"Metrics", endpoint(cfg.Metrics.Enabled, cfg.Metrics.Port)},
		[2]string{"API", endpoint(cfg.API.Enabled, cfg.API.Port)},
		[2]string{"Tracing", onOff(cfg.Telemetry.Enabled, cfg.Telemetry.Endpoint)},
		[2]string{"Profiling", onOff(cfg.Telemetry.Profiling.Enabled, strings.Join(cfg.Telemetry.Profiling.ProfileTypes, ","))},
	)
	return rows
}

func maxConns(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return strconv.Itoa(n)
}

func endpoint(enabled bool, port int) string {
	return onOff(enabled, ":"+strconv.Itoa(port))
}

func onOff(enabled bool, detail string) string {
	if !enabled {
		return "disabled"
	}
	return detail
}
