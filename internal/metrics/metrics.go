package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks publish activity.
//
// Exposed series:
//   - gitdrop_publishes_total: publish count by status
//   - gitdrop_publish_duration_seconds: end-to-end publish duration
//   - gitdrop_published_files_total: files committed
//   - gitdrop_upload_bytes: size distribution of submitted batches
type Metrics struct {
	registry *prometheus.Registry

	publishesTotal  *prometheus.CounterVec
	publishDuration prometheus.Histogram
	filesTotal      prometheus.Counter
	uploadBytes     prometheus.Histogram
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		publishesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gitdrop",
				Name:      "publishes_total",
				Help:      "Total number of publish requests processed",
			},
			[]string{"status"},
		),
		publishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "gitdrop",
				Name:      "publish_duration_seconds",
				Help:      "End-to-end duration of publish requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		filesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gitdrop",
				Name:      "published_files_total",
				Help:      "Total number of files committed",
			},
		),
		uploadBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "gitdrop",
				Name:      "upload_bytes",
				Help:      "Size of submitted batches in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to 16GB
			},
		),
	}

	registry.MustRegister(
		m.publishesTotal,
		m.publishDuration,
		m.filesTotal,
		m.uploadBytes,
		collectors.NewGoCollector(),
	)

	return m
}

// RecordPublish records a completed publish attempt.
func (m *Metrics) RecordPublish(status string, duration time.Duration, files int, bytes int64) {
	m.publishesTotal.WithLabelValues(status).Inc()
	m.publishDuration.Observe(duration.Seconds())
	if files > 0 {
		m.filesTotal.Add(float64(files))
	}
	if bytes > 0 {
		m.uploadBytes.Observe(float64(bytes))
	}
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
