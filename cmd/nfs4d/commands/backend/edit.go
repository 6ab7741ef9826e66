package backend

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfs4d/internal/bytesize"
	"github.com/marmos91/nfs4d/internal/cli/prompt"
	"github.com/marmos91/nfs4d/pkg/metadata"
)

var (
	fileSize string
	rmForce  bool
)

var createCmd = &cobra.Command{
	Use:     "create <path>",
	Short:   "Record a regular file",
	Example: `  nfs4d backend create /data.bin --size 4MiB`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sizedWrite(cmd, args[0], "created", func(ctx context.Context, s metadata.MetadataStore, size uint64) error {
			return s.CreateFile(ctx, args[0], size)
		})
	},
}

var modifyCmd = &cobra.Command{
	Use:     "modify <path>",
	Short:   "Change a file's size",
	Example: `  nfs4d backend modify /data.bin --size 8MiB`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sizedWrite(cmd, args[0], "modified", func(ctx context.Context, s metadata.MetadataStore, size uint64) error {
			return s.ModifyFile(ctx, args[0], size)
		})
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Record a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s metadata.MetadataStore) error {
			if err := s.CreateDir(ctx, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Directory %s created\n", args[0])
			return nil
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Remove a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Remove %s", args[0]), rmForce)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		return withStore(cmd, func(ctx context.Context, s metadata.MetadataStore) error {
			if err := s.Remove(ctx, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{createCmd, modifyCmd} {
		c.Flags().StringVarP(&fileSize, "size", "s", "0", "File size, e.g. 4096 or 4MiB")
	}
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "Remove without asking")
}

func sizedWrite(cmd *cobra.Command, path, verb string, write func(context.Context, metadata.MetadataStore, uint64) error) error {
	size, err := bytesize.ParseByteSize(fileSize)
	if err != nil {
		return fmt.Errorf("invalid --size: %w", err)
	}

	return withStore(cmd, func(ctx context.Context, s metadata.MetadataStore) error {
		if err := write(ctx, s, uint64(size)); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "File %s %s (%s)\n", path, verb, size)
		return nil
	})
}
