// Package metrics reports the outcome of ETL runs to a pluggable backend.
//
// The core depends only on Backend. A no-op backend is used unless one is
// configured, so recording is always safe. Prometheus lives in the prompush
// subpackage.
package metrics

import (
	"github.com/vvka-141/sparkify-etl/internal/logging"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// Metric names understood by backends.
const (
	RunsTotal          = "sparkify_runs_total"
	RunDurationSeconds = "sparkify_run_duration_seconds"
	FilesTotal         = "sparkify_files_total"
	RowsTotal          = "sparkify_rows_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// Observe records a duration-style value.
	Observe(name string, value float64, labels Labels)
	// Flush pushes collected metrics, grouped by the given labels.
	Flush(grouping Labels) error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels) {}
func (nopBackend) Observe(string, float64, Labels)    {}
func (nopBackend) Flush(Labels) error                 { return nil }

// Recorder translates a RunSummary into backend calls.
type Recorder struct {
	backend Backend
	logger  sparkify.Logger
}

var _ sparkify.MetricsRecorder = (*Recorder)(nil)

// NewRecorder wraps backend. A nil backend records nothing; a nil logger discards flush errors.
func NewRecorder(backend Backend, logger sparkify.Logger) *Recorder {
	if backend == nil {
		backend = nopBackend{}
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Recorder{backend: backend, logger: logger}
}

// RecordRun records one finished run and flushes it. A failed flush is
// logged, never returned: metrics must not fail a load.
func (r *Recorder) RecordRun(summary sparkify.RunSummary, runErr error) {
	status := "success"
	if runErr != nil {
		status = "failure"
	}

	r.backend.IncCounter(RunsTotal, 1, Labels{"status": status, "commit_mode": string(summary.CommitMode)})
	r.backend.Observe(RunDurationSeconds, summary.Duration.Seconds(), Labels{"status": status})

	for _, fam := range summary.Families {
		addPositive(r.backend, FilesTotal, int64(fam.FilesProcessed), Labels{"family": fam.Family})
	}

	for table, n := range map[string]int64{
		"songs":     summary.Songs,
		"artists":   summary.Artists,
		"users":     summary.Users,
		"time":      summary.TimeRows,
		"songplays": summary.Songplays,
	} {
		addPositive(r.backend, RowsTotal, n, Labels{"table": table})
	}

	if err := r.backend.Flush(Labels{"run_id": summary.RunID.String()}); err != nil {
		r.logger.Error("metrics push failed: %v", err)
	}
}

func addPositive(b Backend, name string, n int64, labels Labels) {
	if n > 0 {
		b.IncCounter(name, float64(n), labels)
	}
}
