package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/sparkify-etl/internal/config"
	"github.com/vvka-141/sparkify-etl/internal/metrics"
	"github.com/vvka-141/sparkify-etl/internal/metrics/prompush"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// loadProjectConfig loads .env and the project configuration.
// Without an explicit path a missing ./sparkify.yaml yields a nil config.
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	if path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load %s: %w", sparkify.ErrInvalidConfig, path, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to load %s: %w", sparkify.ErrInvalidConfig, config.ConfigFileName, err)
	}
	return cfg, nil
}

// resolveEffectiveTimeout returns the effective timeout, preferring sparkify.yaml if the flag wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, projectCfg *config.ProjectConfig, flagTimeout time.Duration) (time.Duration, error) {
	if !cmd.Flags().Changed("timeout") {
		parsed, err := projectCfg.TimeoutDuration()
		if err != nil {
			return 0, fmt.Errorf("%w: invalid timeout in %s: %w", sparkify.ErrInvalidConfig, config.ConfigFileName, err)
		}
		if parsed > 0 {
			return parsed, nil
		}
	}
	if flagTimeout <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", sparkify.ErrInvalidConfig, flagTimeout)
	}
	return flagTimeout, nil
}

// newRecorder returns a recorder pushing to a Pushgateway when one is
// configured and a log-only recorder otherwise.
func newRecorder(flagURL string, projectCfg *config.ProjectConfig, logger sparkify.Logger) (*metrics.Recorder, error) {
	url, job := flagURL, ""
	if projectCfg != nil {
		url = firstNonEmpty(url, projectCfg.Metrics.PushgatewayURL)
		job = projectCfg.Metrics.Job
	}
	if url == "" {
		return metrics.NewRecorder(nil, logger), nil
	}

	backend, err := prompush.NewBackend(job, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sparkify.ErrInvalidConfig, err)
	}
	logger.Verbose("Pushing run metrics to %s", url)
	return metrics.NewRecorder(backend, logger), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
