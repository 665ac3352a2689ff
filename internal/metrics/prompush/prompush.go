// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A batch run has no scrape endpoint, so collected metrics are pushed to a
// Pushgateway at the end of the run, grouped by run id.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/vvka-141/sparkify-etl/internal/metrics"
)

// DefaultJob is the Pushgateway job used when none is configured.
const DefaultJob = "sparkify"

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	runs     *prometheus.CounterVec // sparkify_runs_total{status, commit_mode}
	duration *prometheus.SummaryVec // sparkify_run_duration_seconds{status}
	files    *prometheus.CounterVec // sparkify_files_total{family}
	rows     *prometheus.CounterVec // sparkify_rows_total{table}
}

var _ metrics.Backend = (*Backend)(nil)

// NewBackend constructs a backend pushing to gatewayURL under jobName.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = DefaultJob
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RunsTotal,
			Help: "ETL runs partitioned by outcome and commit mode.",
		}, []string{"status", "commit_mode"}),
		duration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.RunDurationSeconds,
			Help:       "Wall-clock duration of ETL runs in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"status"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.FilesTotal,
			Help: "Input files committed, per document family.",
		}, []string{"family"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows written, per star-schema table.",
		}, []string{"table"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"runs counter":     b.runs,
		"duration summary": b.duration,
		"files counter":    b.files,
		"rows counter":     b.rows,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.RunsTotal:
		b.runs.WithLabelValues(labels["status"], labels["commit_mode"]).Add(delta)
	case metrics.FilesTotal:
		b.files.WithLabelValues(labels["family"]).Add(delta)
	case metrics.RowsTotal:
		b.rows.WithLabelValues(labels["table"]).Add(delta)
	}
}

func (b *Backend) Observe(name string, value float64, labels metrics.Labels) {
	if name == metrics.RunDurationSeconds {
		b.duration.WithLabelValues(labels["status"]).Observe(value)
	}
}

// Flush pushes the registry to the Pushgateway, replacing the group named by grouping.
func (b *Backend) Flush(grouping metrics.Labels) error {
	pusher := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	for k, v := range grouping {
		pusher = pusher.Grouping(k, v)
	}
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
