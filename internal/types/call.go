package types

import "time"

// CallRecord is one parsed call event from the input log
type CallRecord struct {
	StartTime    time.Time
	EndTime      time.Time
	TraceID      string
	Service      string
	CallerSpanID string // empty when the call is the root of its trace
	SpanID       string
}

// IsRoot reports whether the record has no caller span
func (r CallRecord) IsRoot() bool {
	return r.CallerSpanID == ""
}
