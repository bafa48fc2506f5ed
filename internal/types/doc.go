// Package types provides the data structures shared across trace2json.
//
// Core Types:
//   - CallRecord: one parsed input event
//   - TraceNode: a span inside an assembled call tree
//   - TraceTree: a finished trace, the unit written to the sink
//
// Ownership:
//
// A TraceNode belongs to the trace builder that created it until it is
// linked under its caller; from then on the parent owns it. Trees are
// never shared between traces.
//
// Example Usage:
//
//	rec := types.CallRecord{TraceID: "T1", Service: "svc-a", SpanID: "A"}
//	node := types.NewTraceNode(rec)
package types
