package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sparkify",
	Short: "Load song metadata and listening logs into a PostgreSQL star schema",
	Long: `sparkify reads JSON-lines song documents and event logs and loads them into
the sparkify star schema: songs, artists, users, time and the songplays fact table.

Song documents are processed first, then event logs. Every file is its own
transaction unless --commit-mode batch is used.

Configuration precedence: CLI flag > environment > sparkify.yaml > defaults.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - User denied schema reset approval
  13 - Store write failed
  14 - Input document could not be parsed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is the libpq host flag, so help keeps only its long form.
	rootCmd.PersistentFlags().Bool("help", false, "Help for sparkify")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("config", "", "Path to a sparkify.yaml file (default: ./sparkify.yaml when present)")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return ""
	}
	return path
}
