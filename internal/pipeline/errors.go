package pipeline

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/trace2json/internal/domain/calllog"
	"github.com/GriffinCanCode/trace2json/internal/domain/trace"
	"github.com/GriffinCanCode/trace2json/internal/source"
)

// Error kinds used as the "kind" metric label
const (
	KindDuplicateSpan = "duplicate_span"
	KindDuplicateRoot = "duplicate_root"
	KindUnlinkedSpan  = "unlinked_span"
	KindTimestamp     = "timestamp"
	KindMalformed     = "malformed"
	KindEncoding      = "encoding"
	KindCanceled      = "canceled"
	KindIO            = "io"
)

// ErrorKind classifies a run error
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, trace.ErrDuplicateSpan):
		return KindDuplicateSpan
	case errors.Is(err, trace.ErrDuplicateRoot):
		return KindDuplicateRoot
	case errors.Is(err, trace.ErrUnlinkedSpan):
		return KindUnlinkedSpan
	case errors.Is(err, calllog.ErrUnrecognizedTimestamp):
		return KindTimestamp
	case errors.Is(err, calllog.ErrMalformedRecord):
		return KindMalformed
	case errors.Is(err, source.ErrUnsupportedEncoding):
		return KindEncoding
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindIO
	}
}
