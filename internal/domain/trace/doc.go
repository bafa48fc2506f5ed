/*
Package trace assembles call records into call trees.

# Overview

A Builder collects every span of one trace id. Spans are stored as they
arrive and linked to their callers only when the trace is finalized, so a
callee may be seen before its caller. Finalize refuses to emit a tree in
which any span is not reachable from the root.

A Processor owns the open builders, keyed by trace id. It tracks a
watermark, the latest root close time seen so far, and asks a
ReadinessPolicy whether each open trace is far enough behind the watermark
to be emitted.

# Lifecycle

	UNSEEN -> OPEN (no root) -> OPEN (root) -> READY -> EMITTED

A duplicate span, a second root, or an unlinked span moves the trace to a
failed state and the error is returned to the caller; nothing is retried.

# Usage

	proc := trace.NewProcessor(trace.WithPolicy(trace.StrictlyBefore{}))
	for each record {
		if err := proc.ProcessCall(rec); err != nil {
			return err
		}
		trees, err := proc.PopReadyTraces(false)
		...
	}
	trees, err := proc.PopReadyTraces(true)
*/
package trace
