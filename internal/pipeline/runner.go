package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/GriffinCanCode/trace2json/internal/domain/trace"
	"github.com/GriffinCanCode/trace2json/internal/infrastructure/config"
	"github.com/GriffinCanCode/trace2json/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trace2json/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/trace2json/internal/shared/id"
	"github.com/GriffinCanCode/trace2json/internal/sink"
	"github.com/GriffinCanCode/trace2json/internal/source"
	"github.com/zoobzio/clockz"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Runner executes a conversion described by a Config
type Runner struct {
	cfg    *config.Config
	logger *logging.Logger
	clock  clockz.Clock
	stdin  io.Reader
	stdout io.Writer
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithRunnerClock sets the clock passed to the driver
func WithRunnerClock(clock clockz.Clock) RunnerOption {
	return func(r *Runner) { r.clock = clock }
}

// WithStdio replaces the process stdin and stdout used for "-"
func WithStdio(stdin io.Reader, stdout io.Writer) RunnerOption {
	return func(r *Runner) {
		r.stdin = stdin
		r.stdout = stdout
	}
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(cfg *config.Config, logger *logging.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		clock:  clockz.RealClock,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Convert reads inputs and writes every assembled trace to the configured
// output. Source and sink are closed on every path and the metrics file,
// when configured, is written even if the run fails.
func (r *Runner) Convert(ctx context.Context, inputs []string) (res Result, err error) {
	if err := r.cfg.Validate(); err != nil {
		return Result{}, err
	}

	runID := id.NewRunID()
	log := r.logger.ForRun(runID.String())
	metrics := monitoring.NewMetrics()

	policy := trace.PolicyFor(r.cfg.Window.ReadinessLag.Std())
	log.Info("run started",
		zap.Strings("inputs", inputs),
		zap.String("output", r.cfg.Output.Path),
		zap.String("format", r.cfg.Output.Format),
		zap.Stringer("policy", policy))

	src, err := source.Open(ctx, inputs, source.Options{
		Pattern: r.cfg.Input.Pattern,
		Stdin:   r.stdin,
		Logger:  log.Logger,
	})
	if err != nil {
		return Result{}, fmt.Errorf("open input: %w", err)
	}
	defer func() {
		err = multierr.Append(err, src.Close())
	}()

	dst, err := sink.Open(r.cfg.Output.Path, sink.Options{
		Format:      sink.Format(r.cfg.Output.Format),
		Compression: sink.Compression(r.cfg.Output.Compression),
		Pretty:      r.cfg.Output.Pretty,
		Stdout:      r.stdout,
	})
	if err != nil {
		return Result{}, fmt.Errorf("open output: %w", err)
	}
	defer func() {
		err = multierr.Append(err, dst.Close())
	}()

	proc := trace.NewProcessor(
		trace.WithPolicy(policy),
		trace.WithLogger(log.Logger),
		trace.WithObserver(metrics),
	)
	driver := NewDriver(
		WithClock(r.clock),
		WithLogger(log.Logger),
		WithRecorder(metrics),
	)

	res, err = driver.Run(ctx, src, proc, dst)
	metrics.RecordRun(res.Elapsed)

	if path := r.cfg.Metrics.File; path != "" {
		if werr := metrics.WriteTextfile(path); werr != nil {
			err = multierr.Append(err, fmt.Errorf("write metrics: %w", werr))
		}
	}

	if err != nil {
		return res, err
	}

	fields := append([]zap.Field{
		zap.Int("files", len(src.Files())),
		zap.Int("records", res.Records),
		zap.Duration("elapsed", res.Elapsed),
	}, metrics.Summary().Stats().Fields()...)
	log.Info("run finished", fields...)
	return res, nil
}
