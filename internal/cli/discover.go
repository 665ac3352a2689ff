package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vvka-141/sparkify-etl/internal/files/scanner"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <dir>",
	Short: "List the documents a run would load, in load order",
	Long: `Discover walks <dir> recursively and prints, one per line, every file whose
name ends with the suffix. Files starting with '.' are skipped. The order is
the order run processes them in.

No database is contacted.

Examples:
  sparkify discover data/song_data
  sparkify discover data/log_data --suffix -events.json`,
	Args:              RequireDataDir,
	ValidArgsFunction: completeDirectories,
	RunE:              runDiscover,
}

var discoverSuffix string

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverSuffix, "suffix", sparkify.DefaultSuffix, "File name suffix selecting documents")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	return listDocuments(cmd.OutOrStdout(), scanner.NewScanner(), args[0], discoverSuffix)
}

func listDocuments(w io.Writer, fs sparkify.FileScanner, root, suffix string) error {
	paths, err := fs.Discover(root, suffix)
	if err != nil {
		return fmt.Errorf("%w: %w", sparkify.ErrInvalidConfig, err)
	}
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
	return nil
}
