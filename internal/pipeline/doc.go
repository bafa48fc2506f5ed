// Package pipeline drives call records from a source through the trace
// processor into a sink.
//
// Run is the bare loop. Runner composes it with configuration, logging and
// run metrics for the CLI.
package pipeline
