package calllog

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/GriffinCanCode/trace2json/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) ([]types.CallRecord, error) {
	t.Helper()
	r := NewReader(strings.NewReader(input))
	var out []types.CallRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

func TestReaderParsesRecords(t *testing.T) {
	input := `2013-10-23T10:12:35.298Z 2013-10-23T10:12:35.300Z eckakaau service7 d6m3shqy->62d45qeh
2013-10-23T10:12:35.21Z 2013-10-23T10:12:35.471Z eckakaau service9 null->d6m3shqy
`
	records, err := readAll(t, input)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "eckakaau", records[0].TraceID)
	assert.Equal(t, "service7", records[0].Service)
	assert.Equal(t, "d6m3shqy", records[0].CallerSpanID)
	assert.Equal(t, "62d45qeh", records[0].SpanID)
	assert.False(t, records[0].IsRoot())

	assert.True(t, records[1].IsRoot())
	assert.Empty(t, records[1].CallerSpanID)
	assert.Equal(t, "d6m3shqy", records[1].SpanID)
	assert.Equal(t, 210_000_000, records[1].StartTime.Nanosecond())
}

func TestReaderIgnoresLineLayout(t *testing.T) {
	input := "2013-10-23T10:12:35Z\n2013-10-23T10:12:36Z   t1\n\tsvc null->a 2013-10-23T10:12:35Z 2013-10-23T10:12:36Z t1 svc a->b\n\n"
	records, err := readAll(t, input)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].SpanID)
	assert.Equal(t, "b", records[1].SpanID)
}

func TestReaderEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader("  \n\n "))
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, r.Records())
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target error
	}{
		{
			name:   "bad start time",
			input:  "10:12:35 2013-10-23T10:12:36Z t1 svc null->a",
			target: ErrUnrecognizedTimestamp,
		},
		{
			name:   "bad end time",
			input:  "2013-10-23T10:12:35Z 2013-10-23 t1 svc null->a",
			target: ErrUnrecognizedTimestamp,
		},
		{
			name:   "missing arrow",
			input:  "2013-10-23T10:12:35Z 2013-10-23T10:12:36Z t1 svc a",
			target: ErrMalformedRecord,
		},
		{
			name:   "empty span",
			input:  "2013-10-23T10:12:35Z 2013-10-23T10:12:36Z t1 svc a->",
			target: ErrMalformedRecord,
		},
		{
			name:   "chained arrows",
			input:  "2013-10-23T10:12:35Z 2013-10-23T10:12:36Z t1 svc a->b->c",
			target: ErrMalformedRecord,
		},
		{
			name:   "truncated record",
			input:  "2013-10-23T10:12:35Z 2013-10-23T10:12:36Z t1 svc null->a 2013-10-23T10:12:35Z t2",
			target: ErrMalformedRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readAll(t, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestReaderTruncatedRecordOrdinal(t *testing.T) {
	_, err := readAll(t, "2013-10-23T10:12:35Z 2013-10-23T10:12:36Z t1 svc null->a 2013-10-23T10:12:35Z")

	var malformed *MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 2, malformed.Record)
	assert.Contains(t, malformed.Error(), "1 of 5 fields")
}
