package backend

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfs4d/internal/bytesize"
	"github.com/marmos91/nfs4d/internal/cli/output"
	"github.com/marmos91/nfs4d/pkg/metadata"
)

var statOutput string

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Show store counters and records",
	Example: `  nfs4d backend stat --db /var/lib/nfs4d
  nfs4d backend stat --output json`,
	Args: cobra.NoArgs,
	RunE: runStat,
}

func init() {
	statCmd.Flags().StringVarP(&statOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// statResult is what stat prints.
type statResult struct {
	Stats *metadata.StoreStats `json:"stats" yaml:"stats"`
	Files []metadata.File      `json:"files" yaml:"files"`
}

func (r statResult) Headers() []string {
	return []string{"PATH", "TYPE", "SIZE", "CHANGE", "MTIME"}
}

func (r statResult) Rows() [][]string {
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		rows = append(rows, []string{
			f.Path,
			f.Type.String(),
			bytesize.ByteSize(f.Size).String(),
			strconv.FormatUint(f.ChangeID, 10),
			f.Mtime.Format(time.RFC3339),
		})
	}
	return rows
}

func runStat(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statOutput)
	if err != nil {
		return err
	}

	return withStore(cmd, func(ctx context.Context, store metadata.MetadataStore) error {
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		files, err := store.List(ctx)
		if err != nil {
			return err
		}
		result := statResult{Stats: stats, Files: files}

		if format != output.FormatTable {
			return output.NewPrinter(cmd.OutOrStdout(), format).Print(result)
		}

		out := cmd.OutOrStdout()
		if err := output.SimpleTable(out, [][2]string{
			{"Backend", stats.Backend},
			{"Entries", strconv.Itoa(stats.Entries)},
			{"Files", strconv.Itoa(stats.Files)},
			{"Directories", strconv.Itoa(stats.Directories)},
			{"Total size", bytesize.ByteSize(stats.TotalBytes).String()},
		}); err != nil {
			return err
		}
		_, _ = out.Write([]byte("\n"))
		return output.PrintTable(out, result)
	})
}
