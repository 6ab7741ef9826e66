// Package backend implements "nfs4d backend": offline inspection and
// editing of a BadgerDB metadata store while the server is stopped.
package backend

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfs4d/pkg/config"
	"github.com/marmos91/nfs4d/pkg/metadata"
)

var dbPath string

// Cmd is the backend subcommand.
var Cmd = &cobra.Command{
	Use:   "backend",
	Short: "Inspect and edit a Badger metadata store",
	Long: `Inspect and edit the attribute records of a BadgerDB metadata store.

Badger allows one process per database, so stop the server first. The
database is taken from --db, or from backend.badger.path in the config.

Subcommands:
  stat    Show store counters and records
  create  Record a regular file
  modify  Change a file's size
  mkdir   Record a directory
  rm      Remove a record`,
}

func init() {
	Cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Badger database directory (default: backend.badger.path from config)")

	Cmd.AddCommand(statCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(modifyCmd)
	Cmd.AddCommand(mkdirCmd)
	Cmd.AddCommand(rmCmd)
}

// openStore opens the Badger store named by --db or the config file.
func openStore(cmd *cobra.Command) (metadata.MetadataStore, error) {
	path := dbPath
	if path == "" {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if cfg.Backend.Type != "badger" || cfg.Backend.Badger.InMemory {
			return nil, fmt.Errorf("configured backend is not an on-disk badger store; pass --db")
		}
		path = cfg.Backend.Badger.Path
	}

	return config.CreateMetadataStore(context.Background(), config.BackendConfig{
		Type:   "badger",
		Badger: config.BadgerConfig{Path: path},
	}, nil)
}

// withStore opens the store, runs fn and closes the store.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store metadata.MetadataStore) error) (err error) {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close store: %w", closeErr)
		}
	}()

	return fn(cmd.Context(), store)
}
