/*
Package monitoring collects run metrics for trace2json.

# Overview

Metrics implements trace.Observer and records processed records, opened
and emitted traces, the watermark, and per-trace span counts, depths and
durations. Each Metrics value owns a private Prometheus registry.

There is no metrics endpoint. The registry is written once at the end of
the run in the Prometheus text format, for the node_exporter textfile
collector.

Summary keeps the per-trace figures and computes the mean and quantiles
with gonum/stat for the end-of-run log line.

# Usage

	metrics := monitoring.NewMetrics()
	proc := trace.NewProcessor(trace.WithObserver(metrics))
	...
	logger.Info("run summary", metrics.Summary().Stats().Fields()...)
	_ = metrics.WriteTextfile("/var/lib/node_exporter/trace2json.prom")
*/
package monitoring
