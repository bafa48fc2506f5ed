package types

import "time"

// TraceNode is one span inside an assembled call tree
type TraceNode struct {
	Span         string       `json:"span"`
	CallerSpanID string       `json:"callerSpanId,omitempty"`
	Service      string       `json:"service"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	Children     []*TraceNode `json:"children"`

	// Orphaned is builder state: set until the node is linked to its caller.
	Orphaned bool `json:"-" msgpack:"-"`
}

// NewTraceNode creates an orphaned node for a call record
func NewTraceNode(rec CallRecord) *TraceNode {
	return &TraceNode{
		Span:         rec.SpanID,
		CallerSpanID: rec.CallerSpanID,
		Service:      rec.Service,
		Start:        rec.StartTime,
		End:          rec.EndTime,
		Children:     []*TraceNode{},
		Orphaned:     true,
	}
}

// TraceTree is a finished trace handed to the sink
type TraceTree struct {
	ID   string     `json:"id"`
	Root *TraceNode `json:"root,omitempty"`
}

// Walk visits every node in pre-order with its depth (root is 1).
// Returning false from fn skips the node's children.
func (t *TraceTree) Walk(fn func(node *TraceNode, depth int) bool) {
	if t == nil || t.Root == nil {
		return
	}
	walk(t.Root, 1, fn)
}

func walk(n *TraceNode, depth int, fn func(*TraceNode, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		walk(child, depth+1, fn)
	}
}

// SpanCount returns the number of spans reachable from the root
func (t *TraceTree) SpanCount() int {
	count := 0
	t.Walk(func(*TraceNode, int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the length of the longest root-to-leaf path
func (t *TraceTree) Depth() int {
	maxDepth := 0
	t.Walk(func(_ *TraceNode, depth int) bool {
		if depth > maxDepth {
			maxDepth = depth
		}
		return true
	})
	return maxDepth
}

// Duration returns the wall time covered by the root span
func (t *TraceTree) Duration() time.Duration {
	if t == nil || t.Root == nil {
		return 0
	}
	return t.Root.End.Sub(t.Root.Start)
}
