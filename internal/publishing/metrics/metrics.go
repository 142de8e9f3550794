package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the publishing pipeline.
type Metrics struct {
	// Candidates produced by the matcher, by mode
	MatchCandidates *prometheus.CounterVec

	// Preview latency by mode
	PreviewLatency *prometheus.HistogramVec

	// Assignment rows by publish outcome: inserted, skipped, dropped
	PublishRows *prometheus.CounterVec

	// Publish calls by result: ok, noop, failed
	PublishOutcome *prometheus.CounterVec

	PublishLatency prometheus.Histogram

	// Organization cache lookups by result: hit, miss, error
	OrgCacheLookups *prometheus.CounterVec
}

// New creates a new Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the pipeline metrics with reg. Tests pass a
// fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MatchCandidates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obligo_match_candidates_total",
			Help: "Total match candidates computed by mode",
		}, []string{"mode"}),

		PreviewLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "obligo_preview_duration_seconds",
			Help:    "Duration of preview computation including store lookups",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"mode"}),

		PublishRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obligo_publish_rows_total",
			Help: "Assignment rows handled by publish, by outcome",
		}, []string{"outcome"}),

		PublishOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obligo_publish_calls_total",
			Help: "Publish calls by result",
		}, []string{"result"}),

		PublishLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "obligo_publish_duration_seconds",
			Help:    "Duration of the publish transaction",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		OrgCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "obligo_org_cache_lookups_total",
			Help: "Organization directory cache lookups by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) AddCandidates(mode string, n int) {
	if m != nil {
		m.MatchCandidates.WithLabelValues(mode).Add(float64(n))
	}
}

func (m *Metrics) ObservePreviewLatency(mode string, d time.Duration) {
	if m != nil {
		m.PreviewLatency.WithLabelValues(mode).Observe(d.Seconds())
	}
}

// RecordPublish records the row counts and result of one committed publish.
func (m *Metrics) RecordPublish(inserted, skipped int, d time.Duration) {
	if m == nil {
		return
	}
	m.PublishRows.WithLabelValues("inserted").Add(float64(inserted))
	m.PublishRows.WithLabelValues("skipped").Add(float64(skipped))
	result := "ok"
	if inserted == 0 {
		result = "noop"
	}
	m.PublishOutcome.WithLabelValues(result).Inc()
	m.PublishLatency.Observe(d.Seconds())
}

// AddDropped counts rows discarded for referencing unknown obligations or organizations.
func (m *Metrics) AddDropped(n int) {
	if m != nil {
		m.PublishRows.WithLabelValues("dropped").Add(float64(n))
	}
}

func (m *Metrics) IncrementPublishFailure() {
	if m != nil {
		m.PublishOutcome.WithLabelValues("failed").Inc()
	}
}

func (m *Metrics) RecordCacheLookup(result string) {
	if m != nil {
		m.OrgCacheLookups.WithLabelValues(result).Inc()
	}
}
