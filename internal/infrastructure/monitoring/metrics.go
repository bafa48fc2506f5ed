package monitoring

import (
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/trace2json/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of one conversion run.
// It implements trace.Observer.
type Metrics struct {
	registry *prometheus.Registry

	RecordsTotal  prometheus.Counter
	TracesOpened  prometheus.Counter
	TracesEmitted prometheus.Counter
	ActiveTraces  prometheus.Gauge
	Watermark     prometheus.Gauge
	SpansPerTrace prometheus.Histogram
	TraceDepth    prometheus.Histogram
	TraceDuration prometheus.Histogram
	Errors        *prometheus.CounterVec
	RunDuration   prometheus.Gauge

	summary *Summary
	mu      sync.Mutex
}

// NewMetrics creates a metrics collector on its own registry, so that
// several runs in one process never collide.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RecordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "trace2json_records_total",
			Help: "Total number of call records processed",
		}),
		TracesOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "trace2json_traces_opened_total",
			Help: "Total number of trace builders opened",
		}),
		TracesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "trace2json_traces_emitted_total",
			Help: "Total number of call trees emitted",
		}),
		ActiveTraces: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trace2json_active_traces",
			Help: "Number of traces currently open",
		}),
		Watermark: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trace2json_watermark_seconds",
			Help: "Latest root close time observed, as a Unix timestamp",
		}),
		SpansPerTrace: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trace2json_trace_spans",
			Help:    "Number of spans per emitted trace",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		TraceDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trace2json_trace_depth",
			Help:    "Depth of emitted call trees",
			Buckets: prometheus.LinearBuckets(1, 1, 16),
		}),
		TraceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trace2json_trace_duration_seconds",
			Help:    "Root span duration of emitted traces",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trace2json_errors_total",
			Help: "Fatal errors by kind",
		}, []string{"kind"}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trace2json_run_duration_seconds",
			Help: "Wall time of the conversion run",
		}),

		summary: NewSummary(),
	}
}

// Registry exposes the underlying registry, e.g. for promhttp or tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Summary returns the run summary fed by emitted traces.
func (m *Metrics) Summary() *Summary {
	return m.summary
}

// RecordProcessed counts one call record.
func (m *Metrics) RecordProcessed() {
	m.RecordsTotal.Inc()
}

// RecordError counts a fatal error of the given kind.
func (m *Metrics) RecordError(kind string) {
	m.Errors.WithLabelValues(kind).Inc()
}

// RecordRun stores the wall time of the run.
func (m *Metrics) RecordRun(elapsed time.Duration) {
	m.RunDuration.Set(elapsed.Seconds())
}

// TraceOpened implements trace.Observer.
func (m *Metrics) TraceOpened(string) {
	m.TracesOpened.Inc()
	m.ActiveTraces.Inc()
}

// TraceEmitted implements trace.Observer.
func (m *Metrics) TraceEmitted(tree *types.TraceTree) {
	spans := tree.SpanCount()

	m.TracesEmitted.Inc()
	m.ActiveTraces.Dec()
	m.SpansPerTrace.Observe(float64(spans))
	m.TraceDepth.Observe(float64(tree.Depth()))
	m.TraceDuration.Observe(tree.Duration().Seconds())

	m.mu.Lock()
	m.summary.Add(tree.Duration(), spans)
	m.mu.Unlock()
}

// WatermarkAdvanced implements trace.Observer.
func (m *Metrics) WatermarkAdvanced(watermark time.Time) {
	m.Watermark.Set(float64(watermark.UnixNano()) / 1e9)
}

// WriteTextfile writes all metrics in the Prometheus text format, suitable
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
