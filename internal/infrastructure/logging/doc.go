// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON lines on stderr
//   - Development: colored console output with callers and stack traces
//
// Emitted traces may go to stdout, so logs never do by default.
//
// Example Usage:
//
//	logger := logging.NewDefault().ForRun(runID)
//	defer logger.Close()
//	logger.Info("conversion finished", zap.Int("traces", n))
package logging
