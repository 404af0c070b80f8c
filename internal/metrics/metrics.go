// Package metrics exposes ledger engine counters through Prometheus.
//
// The engine runs as short-lived commands, so metrics are not scraped over
// HTTP: a command writes its registry to a node_exporter textfile on exit.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects ledger metrics in its own registry.
type Recorder struct {
	registry *prometheus.Registry

	postingsRecorded   *prometheus.CounterVec
	rowsPublished      prometheus.Counter
	publishDuration    prometheus.Histogram
	validationRejected prometheus.Counter
}

// NewRecorder registers every ledger metric under namespace.
func NewRecorder(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		postingsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_postings_recorded_total",
			Help:      "Shipments and refunds recorded, by outcome",
		}, []string{"outcome"}), // outcome: created, draft_updated, unchanged, corrected
		rowsPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_rows_published_total",
			Help:      "Draft rows moved to Published",
		}),
		publishDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_publish_duration_seconds",
			Help:      "Time taken by one publish sweep, transaction included",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		validationRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_validation_rejected_total",
			Help:      "Postings rejected because of malformed input",
		}),
	}
}

func (r *Recorder) PostingRecorded(outcome string) {
	r.postingsRecorded.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RowsPublished(n int, took time.Duration) {
	r.rowsPublished.Add(float64(n))
	r.publishDuration.Observe(took.Seconds())
}

func (r *Recorder) ValidationRejected() {
	r.validationRejected.Inc()
}

// Gatherer exposes the registry, for tests and custom exporters.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile dumps the registry in the text exposition format. The file is
// replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
