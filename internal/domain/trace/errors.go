package trace

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateSpan = errors.New("duplicate span id")
	ErrDuplicateRoot = errors.New("duplicate root span")
	ErrUnlinkedSpan  = errors.New("unlinked span")
)

// DuplicateSpanError reports two records with the same span id in one trace
type DuplicateSpanError struct {
	TraceID string
	SpanID  string
}

func (e *DuplicateSpanError) Error() string {
	return fmt.Sprintf("trace %q: span %q seen twice", e.TraceID, e.SpanID)
}

func (e *DuplicateSpanError) Unwrap() error { return ErrDuplicateSpan }

// DuplicateRootError reports a second caller-less record in one trace
type DuplicateRootError struct {
	TraceID  string
	Existing string
	SpanID   string
}

func (e *DuplicateRootError) Error() string {
	return fmt.Sprintf("trace %q: span %q is a second root (root is %q)", e.TraceID, e.SpanID, e.Existing)
}

func (e *DuplicateRootError) Unwrap() error { return ErrDuplicateRoot }

// UnlinkedSpanError reports a trace that cannot be emitted as a tree: its
// root was never seen, or some spans are not reachable from the root.
type UnlinkedSpanError struct {
	TraceID     string
	MissingRoot bool
	Spans       []string
}

func (e *UnlinkedSpanError) Error() string {
	if e.MissingRoot {
		return fmt.Sprintf("trace %q is not finished: no root span", e.TraceID)
	}
	return fmt.Sprintf("trace %q is not finished: unlinked spans [%s]", e.TraceID, strings.Join(e.Spans, ", "))
}

func (e *UnlinkedSpanError) Unwrap() error { return ErrUnlinkedSpan }
