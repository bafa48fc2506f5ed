package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/trace2json/internal/domain/trace"
	"github.com/GriffinCanCode/trace2json/internal/infrastructure/config"
	"github.com/GriffinCanCode/trace2json/internal/types"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const callLog = `2013-10-23T10:12:35.298Z 2013-10-23T10:12:35.300Z t1 svc-b a->b
2013-10-23T10:12:35.21Z 2013-10-23T10:12:35.471Z t1 svc-a null->a
2013-10-23T10:12:36.000Z 2013-10-23T10:12:36.500Z t2 svc-a null->x
2013-10-23T10:12:36.100Z 2013-10-23T10:12:36.200Z t2 svc-c x->y
2013-10-23T10:12:36.110Z 2013-10-23T10:12:36.150Z t2 svc-d y->z
`

func decodeLines(t *testing.T, data []byte) []types.TraceTree {
	t.Helper()
	var out []types.TraceTree
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var tree types.TraceTree
		require.NoError(t, json.Unmarshal(sc.Bytes(), &tree))
		out = append(out, tree)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestRunnerConvertStdio(t *testing.T) {
	var stdout bytes.Buffer
	runner := NewRunner(config.Default(), nil, WithStdio(strings.NewReader(callLog), &stdout))

	res, err := runner.Convert(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Records)
	assert.Equal(t, 2, res.Traces)

	trees := decodeLines(t, stdout.Bytes())
	require.Len(t, trees, 2)
	assert.Equal(t, "t1", trees[0].ID)
	assert.Equal(t, "a", trees[0].Root.Span)
	assert.Equal(t, "b", trees[0].Root.Children[0].Span)
	assert.Equal(t, 2, trees[0].SpanCount())

	assert.Equal(t, "t2", trees[1].ID)
	assert.Equal(t, 3, trees[1].Depth())
}

func TestRunnerConvertFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(in, 0o755))

	lines := strings.SplitAfter(callLog, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.log"), []byte(strings.Join(lines[:2], "")), 0o644))

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write([]byte(strings.Join(lines[2:], "")))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(filepath.Join(in, "b.log.gz"), gz.Bytes(), 0o644))

	cfg := config.Default()
	cfg.Output.Path = filepath.Join(dir, "out.json")
	cfg.Metrics.File = filepath.Join(dir, "run.prom")

	res, err := NewRunner(cfg, nil).Convert(context.Background(), []string{in})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Traces)

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	trees := decodeLines(t, data)
	require.Len(t, trees, 2)
	assert.Equal(t, "t1", trees[0].ID)
	assert.Equal(t, "t2", trees[1].ID)

	prom, err := os.ReadFile(cfg.Metrics.File)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "trace2json_records_total 5")
}

func TestRunnerConvertFailureWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	input := callLog + "2013-10-23T10:12:36.110Z 2013-10-23T10:12:36.150Z t2 svc-d y->z\n"

	var stdout bytes.Buffer
	cfg := config.Default()
	cfg.Metrics.File = filepath.Join(dir, "run.prom")

	_, err := NewRunner(cfg, nil, WithStdio(strings.NewReader(input), &stdout)).
		Convert(context.Background(), []string{"-"})
	require.Error(t, err)

	var dup *trace.DuplicateSpanError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "t2", dup.TraceID)

	trees := decodeLines(t, stdout.Bytes())
	require.Len(t, trees, 1, "t1 was emitted before the duplicate")
	assert.Equal(t, "t1", trees[0].ID)

	prom, err := os.ReadFile(cfg.Metrics.File)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `trace2json_errors_total{kind="duplicate_span"} 1`)
}

func TestRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Format = "xml"

	_, err := NewRunner(cfg, nil).Convert(context.Background(), nil)
	require.Error(t, err)
}
