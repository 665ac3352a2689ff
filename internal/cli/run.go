package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vvka-141/sparkify-etl/internal/config"
	"github.com/vvka-141/sparkify-etl/internal/files/scanner"
	"github.com/vvka-141/sparkify-etl/internal/logging"
	"github.com/vvka-141/sparkify-etl/internal/services"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load song and log documents into the star schema",
	Long: `Run discovers every document under the song root, then the log root, and
loads them in lexical path order.

Song documents fill the songs and artists tables. Log documents keep only
NextSong events and fill time, users and songplays. A songplay references a
song only when title, artist name and duration match exactly.

The first failing file stops the run. In per-file mode (default) earlier files
stay committed; in batch mode nothing is kept.

Password Authentication:
  Password is NOT accepted as a CLI flag. Use $PGPASSWORD, a .env file,
  ~/.pgpass or a connection string.

Examples:
  # Load ./data into the local sparkifydb
  sparkify run

  # Explicit roots and one transaction for the whole run
  sparkify run --song-data /srv/song_data --log-data /srv/log_data --commit-mode batch

  # Push run metrics to a Pushgateway
  sparkify run --pushgateway http://localhost:9091`,
	Args: cobra.NoArgs,
	RunE: runETL,
}

type runFlagValues struct {
	conn        connectionFlags
	songData    string
	logData     string
	suffix      string
	commitMode  string
	timeout     time.Duration
	pushgateway string
}

var runFlags runFlagValues

func init() {
	rootCmd.AddCommand(runCmd)

	addConnectionFlags(runCmd, &runFlags.conn)

	runCmd.Flags().StringVar(&runFlags.songData, "song-data", "",
		"Root of the song documents (default: data.song_dir from sparkify.yaml, else "+sparkify.DefaultSongDataDir+")")
	runCmd.Flags().StringVar(&runFlags.logData, "log-data", "",
		"Root of the event logs (default: data.log_dir from sparkify.yaml, else "+sparkify.DefaultLogDataDir+")")
	runCmd.Flags().StringVar(&runFlags.suffix, "suffix", "",
		"File name suffix selecting documents (default: "+sparkify.DefaultSuffix+")")
	runCmd.Flags().StringVar(&runFlags.commitMode, "commit-mode", "",
		"Transaction boundary: per-file|batch (default: per-file)")
	runCmd.Flags().DurationVar(&runFlags.timeout, "timeout", sparkify.DefaultTimeout,
		"Upper bound for the whole run\n"+
			"Examples: 30s, 5m, 1h30m")
	runCmd.Flags().StringVar(&runFlags.pushgateway, "pushgateway", "",
		"Prometheus Pushgateway URL receiving the run summary (default: metrics.pushgateway_url)")

	_ = runCmd.RegisterFlagCompletionFunc("commit-mode", completeFrom(commitModes))
	_ = runCmd.RegisterFlagCompletionFunc("song-data", completeDirectories)
	_ = runCmd.RegisterFlagCompletionFunc("log-data", completeDirectories)
}

// buildRunConfig merges flags, sparkify.yaml and defaults into a RunConfig.
func buildRunConfig(f runFlagValues, projectCfg *config.ProjectConfig) (sparkify.RunConfig, error) {
	var data config.DataConfig
	var yamlMode string
	if projectCfg != nil {
		data = projectCfg.Data
		yamlMode = projectCfg.CommitMode
	}

	mode, err := sparkify.ParseCommitMode(firstNonEmpty(f.commitMode, yamlMode))
	if err != nil {
		return sparkify.RunConfig{}, err
	}

	cfg := sparkify.RunConfig{
		SongDataDir: firstNonEmpty(f.songData, data.SongDir, sparkify.DefaultSongDataDir),
		LogDataDir:  firstNonEmpty(f.logData, data.LogDir, sparkify.DefaultLogDataDir),
		Suffix:      firstNonEmpty(f.suffix, data.Suffix, sparkify.DefaultSuffix),
		CommitMode:  mode,
	}
	if err := cfg.Validate(); err != nil {
		return sparkify.RunConfig{}, err
	}
	return cfg, nil
}

func runETL(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	projectCfg, err := loadProjectConfig(getConfigFlag(cmd))
	if err != nil {
		return err
	}

	runCfg, err := buildRunConfig(runFlags, projectCfg)
	if err != nil {
		return err
	}

	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, runFlags.timeout)
	if err != nil {
		return err
	}

	connCfg, err := resolveConnection(runFlags.conn, projectCfg)
	if err != nil {
		return err
	}
	if verbose {
		logConnectionVerbose(logger, connCfg)
	}

	recorder, err := newRecorder(runFlags.pushgateway, projectCfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := newCommandContext(timeout)
	defer stop()

	conn, release, err := openConnection(ctx, connCfg, resolveConnectRetries(cmd, runFlags.conn, projectCfg), logger)
	if err != nil {
		return err
	}
	defer release()

	svc := services.NewBatchService(conn, scanner.NewScanner(), logger, recorder)
	summary, err := svc.Run(ctx, runCfg)
	printRunSummary(cmd.OutOrStdout(), summary, err)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// newCommandContext bounds a command by timeout and cancels it on SIGINT or SIGTERM.
func newCommandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctx, func() {
		stop()
		cancel()
	}
}

// printRunSummary reports the committed work of a run. It prints nothing for
// a run that never started.
func printRunSummary(w io.Writer, s sparkify.RunSummary, runErr error) {
	if s.RunID == uuid.Nil {
		return
	}

	status := "completed"
	if runErr != nil {
		status = "failed"
	}
	fmt.Fprintf(w, "Run %s %s in %s (commit mode %s)\n", s.RunID, status, s.Duration.Round(time.Millisecond), s.CommitMode)
	for _, fam := range s.Families {
		fmt.Fprintf(w, "  %-4s %d/%d files from %s\n", fam.Family, fam.FilesProcessed, fam.FilesFound, fam.Root)
	}
	fmt.Fprintf(w, "  rows songs=%d artists=%d users=%d time=%d songplays=%d\n",
		s.Songs, s.Artists, s.Users, s.TimeRows, s.Songplays)
}
