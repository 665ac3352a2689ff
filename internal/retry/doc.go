// Package retry retries connection attempts that failed for a transient reason.
//
// Only establishing the run's connection is retried. Loading is never retried:
// a failed file aborts the run. The retry budget defaults to zero, so unless
// a caller raises it Execute makes exactly one attempt.
//
// # Example Usage
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(3, retry.WithInitialDelay(200*time.Millisecond)),
//	)
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    conn, err = pgx.ConnectConfig(ctx, cfg)
//	    return err
//	})
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. WithOnRetry returns a copy.
package retry
