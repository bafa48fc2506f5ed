package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/GriffinCanCode/trace2json/internal/domain/trace"
	"github.com/GriffinCanCode/trace2json/internal/types"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// RecordSource yields call records until io.EOF
type RecordSource interface {
	Next() (types.CallRecord, error)
}

// TreeSink accepts emitted traces
type TreeSink interface {
	Write(trees []*types.TraceTree) error
}

// Recorder receives per-record progress. monitoring.Metrics satisfies it.
type Recorder interface {
	RecordProcessed()
	RecordError(kind string)
}

type nopRecorder struct{}

func (nopRecorder) RecordProcessed()   {}
func (nopRecorder) RecordError(string) {}

// Result describes a finished or aborted run
type Result struct {
	Records int
	Traces  int
	Elapsed time.Duration
}

// Driver runs the read, process, emit loop
type Driver struct {
	clock    clockz.Clock
	logger   *zap.Logger
	recorder Recorder
}

// DriverOption configures a Driver
type DriverOption func(*Driver)

// WithClock sets the clock used to measure elapsed time
func WithClock(clock clockz.Clock) DriverOption {
	return func(d *Driver) { d.clock = clock }
}

// WithLogger sets the driver logger
func WithLogger(logger *zap.Logger) DriverOption {
	return func(d *Driver) { d.logger = logger }
}

// WithRecorder sets the progress recorder
func WithRecorder(recorder Recorder) DriverOption {
	return func(d *Driver) { d.recorder = recorder }
}

// NewDriver creates a driver with a real clock and no logging
func NewDriver(opts ...DriverOption) *Driver {
	d := &Driver{
		clock:    clockz.RealClock,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run uses a default driver
func Run(ctx context.Context, src RecordSource, proc *trace.Processor, dst TreeSink) (Result, error) {
	return NewDriver().Run(ctx, src, proc, dst)
}

// Run feeds every record to proc and writes ready traces to dst after each
// one. At end of input all remaining traces are force-flushed. The first
// error stops the run; traces written before it stay written.
func (d *Driver) Run(ctx context.Context, src RecordSource, proc *trace.Processor, dst TreeSink) (Result, error) {
	start := d.clock.Now()
	var res Result

	fail := func(err error) (Result, error) {
		res.Elapsed = d.clock.Now().Sub(start)
		kind := ErrorKind(err)
		d.recorder.RecordError(kind)
		d.logger.Error("run aborted",
			zap.String("kind", kind),
			zap.Int("records", res.Records),
			zap.Int("traces", res.Traces),
			zap.Error(err))
		return res, err
	}

	emit := func(force bool) error {
		trees, popErr := proc.PopReadyTraces(force)
		if len(trees) > 0 {
			if err := dst.Write(trees); err != nil {
				return fmt.Errorf("write traces: %w", err)
			}
			res.Traces += len(trees)
		}
		return popErr
	}

	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(err)
		}

		if err := proc.ProcessCall(rec); err != nil {
			return fail(err)
		}
		res.Records++
		d.recorder.RecordProcessed()

		if err := emit(false); err != nil {
			return fail(err)
		}
	}

	if err := emit(true); err != nil {
		return fail(err)
	}

	res.Elapsed = d.clock.Now().Sub(start)
	d.logger.Debug("input drained",
		zap.Int("records", res.Records),
		zap.Int("traces", res.Traces),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}
