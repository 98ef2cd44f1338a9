package crawler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for playlist crawls.
type Metrics struct {
	Registry         *prometheus.Registry
	JobsTotal        *prometheus.CounterVec
	JobDuration      prometheus.Histogram
	ScrollIterations prometheus.Histogram
	VideosExtracted  prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
	ActiveJobs       prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	jobs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_jobs_total",
			Help: "Crawl jobs finished, by outcome.",
		},
		[]string{"outcome"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playlist_job_duration_seconds",
			Help:    "Wall time of a crawl job from admission to release.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 240},
		},
	)
	scrolls := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playlist_scroll_iterations",
			Help:    "Scroll rounds needed before the page height settled.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
	videos := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playlist_videos_extracted_total",
			Help: "Total video records extracted.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_errors_total",
			Help: "Crawl errors by type.",
		},
		[]string{"error_type"},
	)
	active := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlist_active_jobs",
			Help: "Jobs currently holding a browser.",
		},
	)

	registry.MustRegister(jobs, duration, scrolls, videos, errorsTotal, active)

	return &Metrics{
		Registry:         registry,
		JobsTotal:        jobs,
		JobDuration:      duration,
		ScrollIterations: scrolls,
		VideosExtracted:  videos,
		ErrorsTotal:      errorsTotal,
		ActiveJobs:       active,
	}
}

func (m *Metrics) ObserveJob(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(outcome).Inc()
	m.JobDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveScroll(rounds int) {
	if m == nil {
		return
	}
	m.ScrollIterations.Observe(float64(rounds))
}

func (m *Metrics) AddVideos(n int) {
	if m == nil {
		return
	}
	m.VideosExtracted.Add(float64(n))
}

func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.ActiveJobs.Inc()
}

func (m *Metrics) JobFinished() {
	if m == nil {
		return
	}
	m.ActiveJobs.Dec()
}
