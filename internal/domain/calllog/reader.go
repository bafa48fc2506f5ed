package calllog

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/GriffinCanCode/trace2json/internal/types"
)

const (
	fieldsPerRecord = 5
	spanSeparator   = "->"
	nullCaller      = "null"
	maxTokenSize    = 1 << 20
)

// Reader tokenizes a call log into records. Tokens are separated by any
// whitespace; line breaks carry no meaning.
type Reader struct {
	scanner *bufio.Scanner
	records int
}

// NewReader creates a record reader over r
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	scanner.Split(bufio.ScanWords)
	return &Reader{scanner: scanner}
}

// Records returns the number of records read so far
func (r *Reader) Records() int {
	return r.records
}

// Next returns the next record, or io.EOF once the input is exhausted
func (r *Reader) Next() (types.CallRecord, error) {
	var tokens [fieldsPerRecord]string
	n := 0
	for n < fieldsPerRecord && r.scanner.Scan() {
		tokens[n] = r.scanner.Text()
		n++
	}
	if err := r.scanner.Err(); err != nil {
		return types.CallRecord{}, fmt.Errorf("read record %d: %w", r.records+1, err)
	}
	if n == 0 {
		return types.CallRecord{}, io.EOF
	}

	r.records++
	if n < fieldsPerRecord {
		return types.CallRecord{}, &MalformedRecordError{
			Record: r.records,
			Reason: fmt.Sprintf("truncated record: %d of %d fields", n, fieldsPerRecord),
		}
	}
	return r.parse(tokens)
}

func (r *Reader) parse(tokens [fieldsPerRecord]string) (types.CallRecord, error) {
	start, err := ParseTimestamp(tokens[0])
	if err != nil {
		return types.CallRecord{}, fmt.Errorf("record %d: start time: %w", r.records, err)
	}
	end, err := ParseTimestamp(tokens[1])
	if err != nil {
		return types.CallRecord{}, fmt.Errorf("record %d: end time: %w", r.records, err)
	}

	caller, span, ok := strings.Cut(tokens[4], spanSeparator)
	if !ok {
		return types.CallRecord{}, &MalformedRecordError{
			Record: r.records,
			Reason: fmt.Sprintf("span token %q has no %q", tokens[4], spanSeparator),
		}
	}
	if strings.Contains(span, spanSeparator) {
		return types.CallRecord{}, &MalformedRecordError{
			Record: r.records,
			Reason: fmt.Sprintf("span token %q has more than one %q", tokens[4], spanSeparator),
		}
	}
	if span == "" || caller == "" {
		return types.CallRecord{}, &MalformedRecordError{
			Record: r.records,
			Reason: fmt.Sprintf("span token %q has an empty side", tokens[4]),
		}
	}
	if caller == nullCaller {
		caller = ""
	}

	return types.CallRecord{
		StartTime:    start,
		EndTime:      end,
		TraceID:      tokens[2],
		Service:      tokens[3],
		CallerSpanID: caller,
		SpanID:       span,
	}, nil
}
