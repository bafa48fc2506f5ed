package trace

import (
	"errors"
	"testing"
	"time"

	"github.com/GriffinCanCode/trace2json/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingObserver struct {
	opened     []string
	emitted    []string
	watermarks []time.Time
}

func (o *recordingObserver) TraceOpened(id string) { o.opened = append(o.opened, id) }
func (o *recordingObserver) TraceEmitted(tree *types.TraceTree) {
	o.emitted = append(o.emitted, tree.ID)
}
func (o *recordingObserver) WatermarkAdvanced(w time.Time) { o.watermarks = append(o.watermarks, w) }

func ids(trees []*types.TraceTree) []string {
	out := make([]string, 0, len(trees))
	for _, tree := range trees {
		out = append(out, tree.ID)
	}
	return out
}

func feed(t *testing.T, p *Processor, records ...types.CallRecord) {
	t.Helper()
	for _, rec := range records {
		require.NoError(t, p.ProcessCall(rec))
	}
}

func TestProcessorWatermarkReleasesEarlierTrace(t *testing.T) {
	p := NewProcessor()

	feed(t, p,
		call("T1", "svc-a", "A", "B", 1, 5),
		call("T2", "svc-c", "X", "Y", 12, 15),
		call("T1", "svc-a", "", "A", 0, 10),
	)

	ready, err := p.PopReadyTraces(false)
	require.NoError(t, err)
	assert.Empty(t, ready, "T1 holds the watermark and is not strictly earlier than itself")

	feed(t, p, call("T2", "svc-c", "", "X", 11, 20))

	ready, err = p.PopReadyTraces(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, ids(ready))
	assert.Equal(t, 2, ready[0].SpanCount())
	assert.Equal(t, 1, p.Active())

	watermark, ok := p.Watermark()
	assert.True(t, ok)
	assert.Equal(t, at(20), watermark)

	ready, err = p.PopReadyTraces(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"T2"}, ids(ready))
	assert.Equal(t, 0, p.Active())
}

func TestProcessorWatermarkIsMonotonic(t *testing.T) {
	p := NewProcessor()
	feed(t, p,
		call("T1", "s", "", "A", 0, 20),
		call("T2", "s", "", "B", 0, 10),
	)

	watermark, _ := p.Watermark()
	assert.Equal(t, at(20), watermark)

	ready, err := p.PopReadyTraces(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"T2"}, ids(ready))
}

func TestProcessorNoRootNeverReadyWithoutForce(t *testing.T) {
	p := NewProcessor()
	feed(t, p,
		call("T1", "s", "A", "B", 0, 1),
		call("T2", "s", "", "R", 0, 50),
		call("T3", "s", "", "Q", 0, 60),
	)

	ready, err := p.PopReadyTraces(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"T2"}, ids(ready))
	assert.Equal(t, 2, p.Active())
}

func TestProcessorReadyOrderIsFirstSeenOrder(t *testing.T) {
	p := NewProcessor()
	feed(t, p,
		call("T3", "s", "c", "c1", 0, 1),
		call("T1", "s", "", "a", 0, 5),
		call("T2", "s", "", "b", 0, 3),
		call("T3", "s", "", "c", 0, 4),
		call("T4", "s", "", "d", 0, 9),
	)

	ready, err := p.PopReadyTraces(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"T3", "T1", "T2"}, ids(ready))
}

func TestProcessorForceFlushReturnsEverything(t *testing.T) {
	p := NewProcessor()
	feed(t, p,
		call("T1", "s", "", "a", 0, 5),
		call("T2", "s", "", "b", 0, 5),
		call("T2", "s", "b", "b1", 1, 2),
	)

	ready, err := p.PopReadyTraces(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, ids(ready))

	ready, err = p.PopReadyTraces(true)
	require.NoError(t, err)
	assert.Empty(t, ready)
}

func TestProcessorForceFlushRootlessTraceFails(t *testing.T) {
	p := NewProcessor()
	feed(t, p,
		call("T1", "s", "", "a", 0, 5),
		call("T2", "s", "missing", "b", 0, 5),
	)

	ready, err := p.PopReadyTraces(true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnlinkedSpan))
	assert.Equal(t, []string{"T1"}, ids(ready), "T1 finalized before the failure")
	assert.Equal(t, 1, p.Active())

	var unlinked *UnlinkedSpanError
	require.True(t, errors.As(err, &unlinked))
	assert.Equal(t, "T2", unlinked.TraceID)
	assert.True(t, unlinked.MissingRoot)
}

func TestProcessorNonForcedFinalizeFailurePropagates(t *testing.T) {
	p := NewProcessor()
	feed(t, p,
		call("T1", "s", "", "a", 0, 5),
		call("T1", "s", "ghost", "x", 1, 2),
		call("T2", "s", "", "b", 0, 9),
	)

	ready, err := p.PopReadyTraces(false)
	assert.Empty(t, ready)
	assert.True(t, errors.Is(err, ErrUnlinkedSpan))
	assert.Contains(t, err.Error(), "T1")
	assert.Equal(t, 2, p.Active())
}

func TestProcessorDuplicateSpanAborts(t *testing.T) {
	p := NewProcessor()
	feed(t, p, call("T1", "s", "", "a", 0, 5))

	err := p.ProcessCall(call("T1", "s", "", "a", 0, 5))
	assert.True(t, errors.Is(err, ErrDuplicateSpan))
}

func TestProcessorSameSpanIDAcrossTraces(t *testing.T) {
	p := NewProcessor()
	feed(t, p,
		call("T1", "s", "", "a", 0, 5),
		call("T2", "s", "", "a", 0, 6),
	)

	ready, err := p.PopReadyTraces(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, ids(ready))
}

func TestProcessorLagPolicy(t *testing.T) {
	p := NewProcessor(WithPolicy(Lag{Window: 5 * time.Second}))
	feed(t, p,
		call("T1", "s", "", "a", 0, 10),
		call("T2", "s", "", "b", 0, 15),
	)

	ready, err := p.PopReadyTraces(false)
	require.NoError(t, err)
	assert.Empty(t, ready, "watermark 15 is not more than 5s past 10")

	feed(t, p, call("T3", "s", "", "c", 0, 16))
	ready, err = p.PopReadyTraces(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, ids(ready))
}

func TestProcessorLateSpanOpensNewBuilder(t *testing.T) {
	p := NewProcessor()
	feed(t, p,
		call("T1", "s", "", "a", 0, 5),
		call("T2", "s", "", "b", 0, 9),
	)
	ready, err := p.PopReadyTraces(false)
	require.NoError(t, err)
	require.Equal(t, []string{"T1"}, ids(ready))

	feed(t, p, call("T1", "s", "a", "late", 1, 2))
	assert.Equal(t, 2, p.Active())

	_, err = p.PopReadyTraces(true)
	assert.True(t, errors.Is(err, ErrUnlinkedSpan))
}

func TestProcessorObserver(t *testing.T) {
	obs := &recordingObserver{}
	p := NewProcessor(WithObserver(obs), WithLogger(zap.NewNop()))
	feed(t, p,
		call("T1", "s", "", "a", 0, 5),
		call("T1", "s", "a", "a1", 1, 2),
		call("T2", "s", "", "b", 0, 9),
		call("T3", "s", "", "c", 0, 7),
	)
	_, err := p.PopReadyTraces(false)
	require.NoError(t, err)

	assert.Equal(t, []string{"T1", "T2", "T3"}, obs.opened)
	assert.Equal(t, []string{"T1", "T3"}, obs.emitted)
	assert.Equal(t, []time.Time{at(5), at(9)}, obs.watermarks)
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, StrictlyBefore{}, PolicyFor(0))
	assert.Equal(t, StrictlyBefore{}, PolicyFor(-time.Second))
	assert.Equal(t, Lag{Window: time.Minute}, PolicyFor(time.Minute))
	assert.Equal(t, "lag(1m0s)", Lag{Window: time.Minute}.String())
}
