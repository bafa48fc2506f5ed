package trace

import (
	"sort"
	"time"

	"github.com/GriffinCanCode/trace2json/internal/types"
)

// Builder owns every span of a single trace until the trace is finalized
type Builder struct {
	traceID    string
	spanToNode map[string]*types.TraceNode
	order      []*types.TraceNode // processing order, drives child order
	root       *types.TraceNode
}

// NewBuilder creates an empty builder for a trace id
func NewBuilder(traceID string) *Builder {
	return &Builder{
		traceID:    traceID,
		spanToNode: make(map[string]*types.TraceNode),
	}
}

// TraceID returns the id of the trace being assembled
func (b *Builder) TraceID() string {
	return b.traceID
}

// Len returns the number of spans received so far
func (b *Builder) Len() int {
	return len(b.order)
}

// AddRecord stores the record as an orphaned node, or as the root when it
// has no caller. Linking happens in Finalize because callees may arrive
// before their callers.
func (b *Builder) AddRecord(rec types.CallRecord) error {
	if _, exists := b.spanToNode[rec.SpanID]; exists {
		return &DuplicateSpanError{TraceID: b.traceID, SpanID: rec.SpanID}
	}

	node := types.NewTraceNode(rec)
	if rec.IsRoot() {
		if b.root != nil {
			return &DuplicateRootError{TraceID: b.traceID, Existing: b.root.Span, SpanID: rec.SpanID}
		}
		node.Orphaned = false
		b.root = node
	}

	b.spanToNode[rec.SpanID] = node
	b.order = append(b.order, node)
	return nil
}

// HasRoot reports whether the root record has been seen
func (b *Builder) HasRoot() bool {
	return b.root != nil
}

// RootCloseTime returns the end time of the root span, if seen
func (b *Builder) RootCloseTime() (time.Time, bool) {
	if b.root == nil {
		return time.Time{}, false
	}
	return b.root.End, true
}

// Finalize links every span to its caller and returns the finished tree.
// It fails with an UnlinkedSpanError when the root is missing or when some
// span is not reachable from the root.
func (b *Builder) Finalize() (*types.TraceTree, error) {
	for _, node := range b.order {
		if node.CallerSpanID == "" || !node.Orphaned {
			continue
		}
		if caller, ok := b.spanToNode[node.CallerSpanID]; ok {
			caller.Children = append(caller.Children, node)
			node.Orphaned = false
		}
	}

	if b.root == nil {
		return nil, &UnlinkedSpanError{TraceID: b.traceID, MissingRoot: true, Spans: b.orphans(nil)}
	}

	// A caller cycle links nodes without attaching them under the root.
	reached := make(map[*types.TraceNode]struct{}, len(b.order))
	stack := []*types.TraceNode{b.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := reached[n]; seen {
			continue
		}
		reached[n] = struct{}{}
		stack = append(stack, n.Children...)
	}

	if unlinked := b.orphans(reached); len(unlinked) > 0 {
		return nil, &UnlinkedSpanError{TraceID: b.traceID, Spans: unlinked}
	}

	return &types.TraceTree{ID: b.traceID, Root: b.root}, nil
}

// orphans lists spans that are still orphaned or, when reached is non-nil,
// absent from it.
func (b *Builder) orphans(reached map[*types.TraceNode]struct{}) []string {
	var spans []string
	for _, node := range b.order {
		if node.Orphaned {
			spans = append(spans, node.Span)
			continue
		}
		if reached != nil {
			if _, ok := reached[node]; !ok {
				spans = append(spans, node.Span)
			}
		}
	}
	sort.Strings(spans)
	return spans
}

func (b *Builder) String() string {
	return b.traceID
}
