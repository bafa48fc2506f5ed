package calllog

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedTimestamp = errors.New("unrecognized timestamp format")
	ErrMalformedRecord       = errors.New("malformed call record")
)

// UnrecognizedTimestampFormatError reports a timestamp matching none of the
// accepted layouts
type UnrecognizedTimestampFormatError struct {
	Value string
}

func (e *UnrecognizedTimestampFormatError) Error() string {
	return fmt.Sprintf("unknown date format: %q", e.Value)
}

func (e *UnrecognizedTimestampFormatError) Unwrap() error { return ErrUnrecognizedTimestamp }

// MalformedRecordError reports a record whose tokens cannot form a call
type MalformedRecordError struct {
	Record int // 1-based ordinal in the stream
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Record, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }
