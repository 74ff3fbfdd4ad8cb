package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"musicmem/internal/core"
)

type Metrics struct {
	RecommendationsTotal *prometheus.CounterVec
	ResolutionsTotal     *prometheus.CounterVec
	PlaylistsTotal       *prometheus.CounterVec
	TrackRemovalsTotal   prometheus.Counter
	DuplicatesTotal      prometheus.Counter
	LoginsTotal          *prometheus.CounterVec
	ErrorsTotal          *prometheus.CounterVec
	ProcessingTime       *prometheus.HistogramVec
}

// NewMetrics creates the service metrics and registers them on registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		RecommendationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicmem_recommendations_total",
				Help: "Total number of song list generations",
			},
			[]string{"status"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicmem_resolutions_total",
				Help: "Total number of suggestions resolved against the catalog",
			},
			[]string{"result"},
		),
		PlaylistsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicmem_playlists_total",
				Help: "Total number of playlist submissions",
			},
			[]string{"status"},
		),
		TrackRemovalsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "musicmem_track_removals_total",
				Help: "Total number of tracks removed from playlists",
			},
		),
		DuplicatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "musicmem_duplicate_submissions_total",
				Help: "Total number of repeated playlist submissions",
			},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicmem_logins_total",
				Help: "Total number of OAuth callbacks",
			},
			[]string{"status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musicmem_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		ProcessingTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "musicmem_processing_duration_seconds",
				Help:    "Time spent in pipeline operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	registerer.MustRegister(
		metrics.RecommendationsTotal,
		metrics.ResolutionsTotal,
		metrics.PlaylistsTotal,
		metrics.TrackRemovalsTotal,
		metrics.DuplicatesTotal,
		metrics.LoginsTotal,
		metrics.ErrorsTotal,
		metrics.ProcessingTime,
	)

	return metrics
}

// RegisterLedgerSize exposes the number of remembered submissions.
func (m *Metrics) RegisterLedgerSize(registerer prometheus.Registerer, size func() int) {
	registerer.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "musicmem_submission_ledger_size",
			Help: "Number of playlist submissions remembered for duplicate detection",
		},
		func() float64 { return float64(size()) },
	))
}

func (m *Metrics) RecordRecommendations(tracks []core.ResolvedTrack) {
	if len(tracks) == 0 {
		m.RecommendationsTotal.WithLabelValues("empty").Inc()
		return
	}
	m.RecommendationsTotal.WithLabelValues("ok").Inc()

	for i := range tracks {
		if tracks[i].Found() {
			m.ResolutionsTotal.WithLabelValues("found").Inc()
		} else {
			m.ResolutionsTotal.WithLabelValues("not_found").Inc()
		}
	}
}

func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

func (m *Metrics) RecordProcessingTime(operation string, duration time.Duration) {
	m.ProcessingTime.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveLedger counts repeated submissions seen by ledger.
func (m *Metrics) ObserveLedger(ledger core.SubmissionLedger) core.SubmissionLedger {
	return &observedLedger{SubmissionLedger: ledger, duplicates: m.DuplicatesTotal}
}

type observedLedger struct {
	core.SubmissionLedger
	duplicates prometheus.Counter
}

func (l *observedLedger) Has(key string) bool {
	if l.SubmissionLedger.Has(key) {
		l.duplicates.Inc()
		return true
	}
	return false
}
