// Package prometheus records pipeline metrics with the Prometheus client.
//
// The CLI is short-lived, so metrics are exported by writing the registry
// to a node_exporter textfile rather than serving /metrics.
package prometheus

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure PipelineMetrics implements the interface.
var _ driven.PipelineMetrics = (*PipelineMetrics)(nil)

const namespace = "jelly"

// PipelineMetrics holds the counters and histograms of the region pipeline.
type PipelineMetrics struct {
	KeysCollected    prometheus.Counter
	FetchFailures    prometheus.Counter
	RecordsRejected  *prometheus.CounterVec // by field
	RecordsPersisted prometheus.Counter
	ImagesDownloaded prometheus.Counter
	ImageBytes       prometheus.Counter
	ImageFailures    *prometheus.CounterVec // by kind: list, download
	RunDuration      *prometheus.HistogramVec // by outcome

	registry *prometheus.Registry
}

// NewPipelineMetrics creates the metrics and registers them with registry.
// A nil registry gets a fresh one.
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &PipelineMetrics{
		KeysCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_collected_total",
			Help:      "Unique geo keys reported by the index",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Document lookups that failed for a key",
		}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Raw records rejected by validation, by offending field",
		}, []string{"field"}),
		RecordsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_persisted_total",
			Help:      "Jellies written to the store",
		}),
		ImagesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_downloaded_total",
			Help:      "Images downloaded from blob storage",
		}),
		ImageBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_bytes_total",
			Help:      "Bytes of image data downloaded",
		}),
		ImageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_failures_total",
			Help:      "Image listing or download failures",
		}, []string{"kind"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of region queries by outcome",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
		registry: registry,
	}

	for _, c := range []prometheus.Collector{
		m.KeysCollected, m.FetchFailures, m.RecordsRejected, m.RecordsPersisted,
		m.ImagesDownloaded, m.ImageBytes, m.ImageFailures, m.RunDuration,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering pipeline metrics: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry holding the metrics.
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric in text exposition format to path.
func (m *PipelineMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func (m *PipelineMetrics) KeyCollected() { m.KeysCollected.Inc() }

func (m *PipelineMetrics) FetchFailed() { m.FetchFailures.Inc() }

func (m *PipelineMetrics) RecordRejected(field string) {
	m.RecordsRejected.WithLabelValues(field).Inc()
}

func (m *PipelineMetrics) RecordPersisted() { m.RecordsPersisted.Inc() }

func (m *PipelineMetrics) ImageDownloaded(bytes int) {
	m.ImagesDownloaded.Inc()
	m.ImageBytes.Add(float64(bytes))
}

func (m *PipelineMetrics) ImageFailed(kind string) {
	m.ImageFailures.WithLabelValues(kind).Inc()
}

func (m *PipelineMetrics) ObserveRun(duration time.Duration, outcome string) {
	m.RunDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
