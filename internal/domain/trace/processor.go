package trace

import (
	"fmt"
	"time"

	"github.com/GriffinCanCode/trace2json/internal/types"
	"go.uber.org/zap"
)

// Observer receives processor lifecycle events
type Observer interface {
	TraceOpened(traceID string)
	TraceEmitted(tree *types.TraceTree)
	WatermarkAdvanced(watermark time.Time)
}

type nopObserver struct{}

func (nopObserver) TraceOpened(string)            {}
func (nopObserver) TraceEmitted(*types.TraceTree) {}
func (nopObserver) WatermarkAdvanced(time.Time)   {}

// Option configures a Processor
type Option func(*Processor)

// WithPolicy replaces the default StrictlyBefore readiness policy
func WithPolicy(policy ReadinessPolicy) Option {
	return func(p *Processor) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithLogger sets the processor logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver registers an observer for processor events
func WithObserver(observer Observer) Option {
	return func(p *Processor) {
		if observer != nil {
			p.observer = observer
		}
	}
}

// Processor owns the in-flight trace builders and decides when each trace
// can be emitted. Not safe for concurrent use.
//
// A record that arrives after its trace was emitted opens a fresh builder
// for the same id. That builder usually lacks a root and fails on flush;
// late spans are not reconciled with the emitted tree.
type Processor struct {
	builders map[string]*Builder
	order    []string // trace ids in first-seen order

	watermark    time.Time
	hasWatermark bool

	policy   ReadinessPolicy
	logger   *zap.Logger
	observer Observer
}

// NewProcessor creates a processor with no open traces
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		builders: make(map[string]*Builder),
		policy:   StrictlyBefore{},
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessCall routes a record to the builder for its trace, creating the
// builder on first sighting. Root records advance the watermark.
func (p *Processor) ProcessCall(rec types.CallRecord) error {
	b, ok := p.builders[rec.TraceID]
	if !ok {
		b = NewBuilder(rec.TraceID)
		p.builders[rec.TraceID] = b
		p.order = append(p.order, rec.TraceID)
		p.observer.TraceOpened(rec.TraceID)
		if !rec.IsRoot() {
			p.logger.Debug("trace opened by non-root span",
				zap.String("trace_id", rec.TraceID),
				zap.String("span_id", rec.SpanID),
			)
		}
	}

	if err := b.AddRecord(rec); err != nil {
		return err
	}

	if rec.IsRoot() && (!p.hasWatermark || rec.EndTime.After(p.watermark)) {
		p.watermark = rec.EndTime
		p.hasWatermark = true
		p.observer.WatermarkAdvanced(p.watermark)
	}
	return nil
}

// PopReadyTraces finalizes and removes every ready trace, in first-seen
// order. With force set every open trace is ready. On the first finalize
// failure the traces finalized before it are returned along with the
// error; the failing trace and those after it stay open.
func (p *Processor) PopReadyTraces(force bool) ([]*types.TraceTree, error) {
	var (
		ready []*types.TraceTree
		kept  = p.order[:0]
		err   error
	)

	for i, traceID := range p.order {
		b := p.builders[traceID]
		if !p.isReady(b, force) {
			kept = append(kept, traceID)
			continue
		}

		tree, ferr := b.Finalize()
		if ferr != nil {
			err = fmt.Errorf("finalize trace %s: %w", traceID, ferr)
			kept = append(kept, p.order[i:]...)
			break
		}

		delete(p.builders, traceID)
		ready = append(ready, tree)
		p.observer.TraceEmitted(tree)
		p.logger.Debug("trace ready",
			zap.String("trace_id", traceID),
			zap.Int("spans", b.Len()),
			zap.Bool("forced", force),
		)
	}
	p.order = kept
	return ready, err
}

func (p *Processor) isReady(b *Builder, force bool) bool {
	if force {
		return true
	}
	if !p.hasWatermark {
		return false
	}
	rootClose, ok := b.RootCloseTime()
	if !ok {
		return false
	}
	return p.policy.Ready(rootClose, p.watermark)
}

// Active returns the number of open traces
func (p *Processor) Active() int {
	return len(p.builders)
}

// Watermark returns the latest root close time processed so far
func (p *Processor) Watermark() (time.Time, bool) {
	return p.watermark, p.hasWatermark
}
