package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireDataDir validates that exactly one <dir> argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireDataDir(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <dir>

Usage: %s

Example:
  %s data/song_data`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
