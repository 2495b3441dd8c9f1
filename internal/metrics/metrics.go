// Package metrics provides Prometheus metrics for the revision store
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the revision store
type Metrics struct {
	// Version store metrics
	VersionsCreatedTotal  *prometheus.CounterVec
	VersionCreateDuration prometheus.Histogram
	ScorerFailuresTotal   prometheus.Counter
	ScoreDuration         prometheus.Histogram

	// Diff metrics
	DiffComputationsTotal prometheus.Counter
	DiffDuration          prometheus.Histogram

	// Comparison and merge metrics
	ComparisonsTotal       prometheus.Counter
	ConflictsDetectedTotal *prometheus.CounterVec
	MergesTotal            *prometheus.CounterVec
	MergeDuration          prometheus.Histogram

	// Branch metrics
	BranchesCreatedTotal prometheus.Counter
	BranchCommitsTotal   prometheus.Counter

	// Journal metrics
	JournalAppendsTotal *prometheus.CounterVec

	// Notification metrics
	EventsPublishedTotal *prometheus.CounterVec

	// Server metrics
	ServerStartTime time.Time
}

// NewMetrics creates and registers all Prometheus metrics against the given
// registerer. A nil registerer falls back to the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	m.VersionsCreatedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revstore_versions_created_total",
			Help: "Total number of document versions created",
		},
		[]string{"author_type"},
	)

	m.VersionCreateDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "revstore_version_create_duration_seconds",
			Help:    "Duration of version creation in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	m.ScorerFailuresTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "revstore_scorer_failures_total",
			Help: "Total number of quality-scoring failures degraded to neutral defaults",
		},
	)

	m.ScoreDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "revstore_score_duration_seconds",
			Help:    "Duration of quality scoring in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.DiffComputationsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "revstore_diff_computations_total",
			Help: "Total number of diff computations",
		},
	)

	m.DiffDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "revstore_diff_duration_seconds",
			Help:    "Duration of diff computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.ComparisonsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "revstore_comparisons_total",
			Help: "Total number of version comparisons",
		},
	)

	m.ConflictsDetectedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revstore_conflicts_detected_total",
			Help: "Total number of conflicts detected",
		},
		[]string{"type"},
	)

	m.MergesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revstore_merges_total",
			Help: "Total number of merge attempts",
		},
		[]string{"strategy", "status"},
	)

	m.MergeDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "revstore_merge_duration_seconds",
			Help:    "Duration of merges in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.BranchesCreatedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "revstore_branches_created_total",
			Help: "Total number of branches created",
		},
	)

	m.BranchCommitsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "revstore_branch_commits_total",
			Help: "Total number of versions committed through a branch",
		},
	)

	m.JournalAppendsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revstore_journal_appends_total",
			Help: "Total number of journal append attempts",
		},
		[]string{"record", "status"},
	)

	m.EventsPublishedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revstore_events_published_total",
			Help: "Total number of notification events published",
		},
		[]string{"kind"},
	)

	return m
}

// RecordVersionCreate records a committed version
func (m *Metrics) RecordVersionCreate(authorType string, duration time.Duration) {
	m.VersionsCreatedTotal.WithLabelValues(authorType).Inc()
	m.VersionCreateDuration.Observe(duration.Seconds())
}

// RecordScore records one scoring attempt
func (m *Metrics) RecordScore(duration time.Duration, failed bool) {
	m.ScoreDuration.Observe(duration.Seconds())
	if failed {
		m.ScorerFailuresTotal.Inc()
	}
}

// RecordDiff records one diff computation
func (m *Metrics) RecordDiff(duration time.Duration) {
	m.DiffComputationsTotal.Inc()
	m.DiffDuration.Observe(duration.Seconds())
}

// RecordMerge records a merge attempt
func (m *Metrics) RecordMerge(strategy, status string, duration time.Duration) {
	m.MergesTotal.WithLabelValues(strategy, status).Inc()
	m.MergeDuration.Observe(duration.Seconds())
}

// RecordConflicts records detected conflicts by type
func (m *Metrics) RecordConflicts(counts map[string]int) {
	for conflictType, count := range counts {
		m.ConflictsDetectedTotal.WithLabelValues(conflictType).Add(float64(count))
	}
}

// RecordJournalAppend records a journal append attempt
func (m *Metrics) RecordJournalAppend(record string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.JournalAppendsTotal.WithLabelValues(record, status).Inc()
}

// RecordEvent records a published notification event
func (m *Metrics) RecordEvent(kind string) {
	m.EventsPublishedTotal.WithLabelValues(kind).Inc()
}

// UptimeSeconds returns seconds since metrics creation
func (m *Metrics) UptimeSeconds() float64 {
	return time.Since(m.ServerStartTime).Seconds()
}
