package monitoring

import (
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary accumulates per-trace figures for the end-of-run report
type Summary struct {
	durations []float64 // seconds
	spans     []float64
}

// SummaryStats is a computed view of a Summary
type SummaryStats struct {
	Traces      int
	Spans       int
	MeanSpans   float64
	P50Duration time.Duration
	P95Duration time.Duration
	MaxDuration time.Duration
}

// NewSummary creates an empty summary
func NewSummary() *Summary {
	return &Summary{}
}

// Add records one emitted trace
func (s *Summary) Add(duration time.Duration, spans int) {
	s.durations = append(s.durations, duration.Seconds())
	s.spans = append(s.spans, float64(spans))
}

// Stats computes the summary figures. Zero values are returned when no
// trace was recorded.
func (s *Summary) Stats() SummaryStats {
	if len(s.durations) == 0 {
		return SummaryStats{}
	}

	sorted := make([]float64, len(s.durations))
	copy(sorted, s.durations)
	sort.Float64s(sorted)

	return SummaryStats{
		Traces:      len(s.durations),
		Spans:       int(floats.Sum(s.spans)),
		MeanSpans:   stat.Mean(s.spans, nil),
		P50Duration: seconds(stat.Quantile(0.5, stat.Empirical, sorted, nil)),
		P95Duration: seconds(stat.Quantile(0.95, stat.Empirical, sorted, nil)),
		MaxDuration: seconds(sorted[len(sorted)-1]),
	}
}

// Fields renders the stats as zap fields
func (s SummaryStats) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("traces", s.Traces),
		zap.Int("spans", s.Spans),
		zap.Float64("mean_spans_per_trace", s.MeanSpans),
		zap.Duration("p50_trace_duration", s.P50Duration),
		zap.Duration("p95_trace_duration", s.P95Duration),
		zap.Duration("max_trace_duration", s.MaxDuration),
	}
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
