// Package metrics holds the Prometheus collectors of the sync engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Document outcomes recorded by the sync engine.
const (
	OutcomeSaved         = "saved"
	OutcomeSkipped       = "skipped"
	OutcomeFetchFailed   = "fetch_failed"
	OutcomePersistFailed = "persist_failed"
)

// SyncMetrics counts sync runs and per-document outcomes.
type SyncMetrics struct {
	runs        *prometheus.CounterVec
	documents   *prometheus.CounterVec
	runDuration prometheus.Histogram
	pageErrors  prometheus.Counter
}

// NewSyncMetrics creates the collectors and registers them with reg.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eta_sync_runs_total",
				Help: "Total number of ETA sync runs by outcome.",
			},
			[]string{"outcome"},
		),
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eta_sync_documents_total",
				Help: "Documents observed by the ETA sync engine by outcome.",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eta_sync_run_duration_seconds",
			Help:    "Wall-clock duration of ETA sync runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		pageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eta_sync_search_page_errors_total",
			Help: "Search page requests that failed and truncated a window.",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.documents, m.runDuration, m.pageErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RunFinished records a completed or aborted run.
func (m *SyncMetrics) RunFinished(outcome string, d time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(d.Seconds())
}

// Document records n documents with the given outcome.
func (m *SyncMetrics) Document(outcome string, n int) {
	if n <= 0 {
		return
	}
	m.documents.WithLabelValues(outcome).Add(float64(n))
}

// SearchPageFailed records a truncated window.
func (m *SyncMetrics) SearchPageFailed() {
	m.pageErrors.Inc()
}
