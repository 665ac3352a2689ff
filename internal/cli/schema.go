package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/sparkify-etl/internal/logging"
	"github.com/vvka-141/sparkify-etl/internal/schema"
	"github.com/vvka-141/sparkify-etl/internal/services"
	"github.com/vvka-141/sparkify-etl/internal/ui"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create (or reset) the star schema",
	Long: `Schema creates the songs, artists, users, time and songplays tables when they
do not exist yet. Existing tables and rows are left alone.

--reset drops the five tables and recreates them empty. It asks you to type
the database name first; --force replaces the prompt with a short countdown
for CI pipelines.

Examples:
  # Create missing tables in the local sparkifydb
  sparkify schema

  # Start over
  sparkify schema --reset

  # Start over without a prompt
  sparkify schema --reset --force`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

type schemaFlagValues struct {
	conn    connectionFlags
	reset   bool
	force   bool
	timeout time.Duration
}

var schemaFlags schemaFlagValues

func init() {
	rootCmd.AddCommand(schemaCmd)

	addConnectionFlags(schemaCmd, &schemaFlags.conn)

	schemaCmd.Flags().BoolVar(&schemaFlags.reset, "reset", false,
		"Drop and recreate the tables\n"+
			"Requires interactive confirmation unless --force is used")
	schemaCmd.Flags().BoolVar(&schemaFlags.force, "force", false,
		"Skip the interactive approval prompt of --reset")
	schemaCmd.Flags().DurationVar(&schemaFlags.timeout, "timeout", 3*time.Minute,
		"Upper bound for the command")
}

// selectApprover picks the approver for a reset. A prompt needs a terminal.
func selectApprover(reset, force, verbose bool, stdinIsTerminal func() bool) (sparkify.Approver, error) {
	switch {
	case force:
		return ui.NewForcedApprover(verbose), nil
	case reset && !stdinIsTerminal():
		return nil, fmt.Errorf("%w: --reset needs an interactive terminal to confirm; use --force in scripts", sparkify.ErrInvalidConfig)
	default:
		return ui.NewInteractiveApprover(verbose), nil
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	if schemaFlags.force && !schemaFlags.reset {
		return fmt.Errorf("%w: --force only applies to --reset", sparkify.ErrInvalidConfig)
	}

	approver, err := selectApprover(schemaFlags.reset, schemaFlags.force, verbose, ui.StdinIsTerminal)
	if err != nil {
		return err
	}

	projectCfg, err := loadProjectConfig(getConfigFlag(cmd))
	if err != nil {
		return err
	}

	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, schemaFlags.timeout)
	if err != nil {
		return err
	}

	connCfg, err := resolveConnection(schemaFlags.conn, projectCfg)
	if err != nil {
		return err
	}
	if verbose {
		logConnectionVerbose(logger, connCfg)
	}

	ctx, stop := newCommandContext(timeout)
	defer stop()

	conn, release, err := openConnection(ctx, connCfg, resolveConnectRetries(cmd, schemaFlags.conn, projectCfg), logger)
	if err != nil {
		return err
	}
	defer release()

	if err := services.NewSchemaService(approver, logger).Apply(ctx, conn, connCfg.Database, schemaFlags.reset); err != nil {
		return err
	}

	counts, err := schema.New().Counts(ctx, conn)
	if err != nil {
		return fmt.Errorf("%w: %w", sparkify.ErrLoadFailed, err)
	}
	printTableCounts(cmd.OutOrStdout(), counts)
	return nil
}

// printTableCounts lists the row count of every table in creation order.
func printTableCounts(w io.Writer, counts map[string]int64) {
	for _, table := range schema.Tables {
		fmt.Fprintf(w, "%-10s %d\n", table, counts[table])
	}
}
