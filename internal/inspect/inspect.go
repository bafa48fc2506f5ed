package inspect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/valyala/fastjson"
)

// ErrInvalidDocument marks a line that is not a trace document
var ErrInvalidDocument = errors.New("invalid trace document")

// InvalidDocumentError describes the offending line
type InvalidDocumentError struct {
	Line   int
	Reason string
}

func (e *InvalidDocumentError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *InvalidDocumentError) Unwrap() error { return ErrInvalidDocument }

// Report summarizes a stream of trace documents
type Report struct {
	Traces   int
	Spans    int
	MaxDepth int
	// Services maps each service name to the number of spans it served.
	Services map[string]int
	// DuplicateIDs lists trace ids seen more than once, in first-repeat order.
	DuplicateIDs []string
}

// ServiceNames returns the service names in sorted order
func (r Report) ServiceNames() []string {
	names := make([]string, 0, len(r.Services))
	for name := range r.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const maxLine = 64 * 1024 * 1024

var parsers fastjson.ParserPool

// Scan reads one JSON trace document per line. Blank lines are skipped.
func Scan(r io.Reader) (Report, error) {
	report := Report{Services: make(map[string]int)}
	seen := make(map[string]int)

	p := parsers.Get()
	defer parsers.Put(p)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}

		v, err := p.ParseBytes(raw)
		if err != nil {
			return report, &InvalidDocumentError{Line: line, Reason: err.Error()}
		}
		if err := report.add(v, line, seen); err != nil {
			return report, err
		}
	}
	if err := sc.Err(); err != nil {
		return report, fmt.Errorf("read documents: %w", err)
	}
	return report, nil
}

func (r *Report) add(doc *fastjson.Value, line int, seen map[string]int) error {
	if doc.Type() != fastjson.TypeObject {
		return &InvalidDocumentError{Line: line, Reason: "not an object"}
	}
	id := string(doc.GetStringBytes("id"))
	if id == "" {
		return &InvalidDocumentError{Line: line, Reason: "missing id"}
	}
	root := doc.Get("root")
	if root == nil || root.Type() != fastjson.TypeObject {
		return &InvalidDocumentError{Line: line, Reason: fmt.Sprintf("trace %q has no root", id)}
	}

	seen[id]++
	if seen[id] == 2 {
		r.DuplicateIDs = append(r.DuplicateIDs, id)
	}

	spans, depth, err := r.walk(root, 1)
	if err != nil {
		return &InvalidDocumentError{Line: line, Reason: fmt.Sprintf("trace %q: %v", id, err)}
	}
	r.Traces++
	r.Spans += spans
	if depth > r.MaxDepth {
		r.MaxDepth = depth
	}
	return nil
}

// walk returns the span count and depth of the subtree at node
func (r *Report) walk(node *fastjson.Value, depth int) (int, int, error) {
	span := node.GetStringBytes("span")
	if len(span) == 0 {
		return 0, 0, errors.New("node without span")
	}
	r.Services[string(node.GetStringBytes("service"))]++

	spans, deepest := 1, depth
	for _, child := range node.GetArray("children") {
		n, d, err := r.walk(child, depth+1)
		if err != nil {
			return 0, 0, err
		}
		spans += n
		if d > deepest {
			deepest = d
		}
	}
	return spans, deepest, nil
}
