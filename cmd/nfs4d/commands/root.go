// Package commands implements the nfs4d command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/nfs4d/cmd/nfs4d/commands/backend"
	"github.com/marmos91/nfs4d/cmd/nfs4d/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "nfs4d",
	Short: "nfs4d - NFSv4.2 wire-protocol server",
	Long: `nfs4d answers NFSv4.2 COMPOUND requests over TCP from a pluggable
metadata backend (in-memory or BadgerDB).

Use "nfs4d [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once by main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/nfs4d/config.yaml, then ./config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(backend.Cmd)
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
