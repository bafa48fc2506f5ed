package calllog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "centiseconds",
			value: "2013-10-23T10:12:35.27Z",
			want:  time.Date(2013, 10, 23, 10, 12, 35, 270_000_000, time.UTC),
		},
		{
			name:  "milliseconds",
			value: "2013-10-23T10:12:35.271Z",
			want:  time.Date(2013, 10, 23, 10, 12, 35, 271_000_000, time.UTC),
		},
		{
			name:  "whole seconds",
			value: "2013-10-23T10:12:35Z",
			want:  time.Date(2013, 10, 23, 10, 12, 35, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestampRejectsUnknownFormats(t *testing.T) {
	for _, value := range []string{
		"",
		"yesterday",
		"2013-10-23 10:12:35",
		"2013-10-23T10:12:35+02:00",
		"23/10/2013T10:12:35Z",
		"2013-13-23T10:12:35Z",
		"2013-10-23T10:12:35.1Z",
		"2013-10-23T10:12:35.1234Z",
		"2013-10-23T10:12:35.123456789Z",
	} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseTimestamp(value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnrecognizedTimestamp))

			var tsErr *UnrecognizedTimestampFormatError
			require.True(t, errors.As(err, &tsErr))
			assert.Equal(t, value, tsErr.Value)
		})
	}
}
