package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTraced(t *testing.T, traceId string) (*Tracker, context.Context) {
	t.Helper()

	tracker := NewTracker(NewManager())
	ctx := tracker.Manager().Begin(context.Background())
	tracker.Manager().SetTraceId(ctx, traceId)

	return tracker, ctx
}

func TestTrackerChainIsLIFO(t *testing.T) {
	tracker, ctx := newTraced(t, "t1")

	tracker.InitChain(ctx)
	tracker.Push(ctx, Entry{Source: "A", Type: TypeAgent})
	tracker.Push(ctx, Entry{Source: "B", Type: TypeLLM})
	tracker.Pop(ctx)

	assert.Equal(t, "source: A, type: agent | ", tracker.RenderChain(ctx))

	tracker.Push(ctx, Entry{Source: "C", Type: TypeTool})
	assert.Equal(t, "source: A, type: agent -> source: C, type: tool | ", tracker.RenderChain(ctx))
	assert.Equal(t, []Entry{{Source: "A", Type: TypeAgent}, {Source: "C", Type: TypeTool}}, tracker.Chain(ctx))
}

func TestTrackerInitIsIdempotent(t *testing.T) {
	tracker, ctx := newTraced(t, "t1")

	tracker.InitChain(ctx)
	tracker.Push(ctx, Entry{Source: "A", Type: TypeAgent})
	tracker.InitChain(ctx)

	tracker.InitTokenUsage(ctx)
	tracker.AddTokenUsage(ctx, TokenUsage{"a": 1})
	tracker.InitTokenUsage(ctx)

	assert.Len(t, tracker.Chain(ctx), 1)
	assert.Equal(t, TokenUsage{"a": 1}, tracker.TokenUsage(ctx))
}

func TestTrackerPopNoops(t *testing.T) {
	tracker, ctx := newTraced(t, "t1")

	tracker.Pop(ctx)

	tracker.InitChain(ctx)
	tracker.Pop(ctx)
	tracker.Pop(ctx)

	assert.Empty(t, tracker.Chain(ctx))
	assert.Equal(t, "", tracker.RenderChain(ctx))
}

func TestTrackerPushNeedsInit(t *testing.T) {
	tracker, ctx := newTraced(t, "t1")

	tracker.Push(ctx, Entry{Source: "A", Type: TypeAgent})

	assert.Nil(t, tracker.Chain(ctx))
	assert.Empty(t, tracker.records)
}

func TestTrackerTokenAccumulation(t *testing.T) {
	tracker, ctx := newTraced(t, "t1")

	tracker.InitTokenUsage(ctx)
	tracker.AddTokenUsage(ctx, TokenUsage{"a": 1})
	tracker.AddTokenUsage(ctx, TokenUsage{"a": 2, "b": 5})

	assert.Equal(t, TokenUsage{"a": 3, "b": 5}, tracker.TokenUsage(ctx))
}

func TestTrackerAddTokenUsageWithoutAccumulator(t *testing.T) {
	tracker, ctx := newTraced(t, "t1")

	tracker.AddTokenUsage(ctx, TokenUsage{"a": 1})

	assert.Nil(t, tracker.TokenUsage(ctx))
}

func TestTrackerAbsentTraceIdIsNoop(t *testing.T) {
	tracker := NewTracker(NewManager())
	ctx := tracker.Manager().Begin(context.Background())

	tracker.InitChain(ctx)
	tracker.InitTokenUsage(ctx)
	tracker.Push(ctx, Entry{Source: "A", Type: TypeAgent})
	tracker.AddTokenUsage(ctx, TokenUsage{"a": 1})
	tracker.Pop(ctx)
	tracker.ClearChain(ctx)
	tracker.ClearTokenUsage(ctx)

	assert.Empty(t, tracker.records)
	assert.Equal(t, "", tracker.RenderChain(ctx))
	assert.Nil(t, tracker.TokenUsage(ctx))
}

func TestTrackerIsolationAcrossTraceIds(t *testing.T) {
	tracker := NewTracker(NewManager())
	m := tracker.Manager()

	one := m.Begin(context.Background())
	m.SetTraceId(one, "T1")
	two := m.Begin(context.Background())
	m.SetTraceId(two, "T2")

	tracker.InitChain(one)
	tracker.InitTokenUsage(one)
	tracker.Push(one, Entry{Source: "A", Type: TypeAgent})
	tracker.AddTokenUsage(one, TokenUsage{"prompt_tokens": 10})

	tracker.InitChain(two)
	tracker.InitTokenUsage(two)

	assert.Empty(t, tracker.Chain(two))
	assert.Equal(t, TokenUsage{}, tracker.TokenUsage(two))
	assert.Equal(t, "", tracker.RenderChain(two))

	tracker.ClearChain(two)
	assert.Len(t, tracker.Chain(one), 1)
}

func TestTrackerClearTokenUsageClearsTraceId(t *testing.T) {
	tracker, ctx := newTraced(t, "t1")

	tracker.InitChain(ctx)
	tracker.InitTokenUsage(ctx)
	tracker.Push(ctx, Entry{Source: "A", Type: TypeAgent})

	key := recordKey{unit: tracker.Manager().unitOf(ctx), traceId: "t1"}

	tracker.ClearChain(ctx)
	assert.Nil(t, tracker.Chain(ctx))
	require.Contains(t, tracker.records, key)

	tracker.ClearTokenUsage(ctx)
	assert.Empty(t, tracker.Manager().TraceId(ctx))
	assert.NotContains(t, tracker.records, key)
}

func TestTrackerUnitsSharingTraceIdStayApart(t *testing.T) {
	tracker := NewTracker(NewManager())
	m := tracker.Manager()

	one := m.Begin(context.Background())
	m.SetTraceId(one, "shared")
	two := m.Begin(context.Background())
	m.SetTraceId(two, "shared")

	for _, ctx := range []context.Context{one, two} {
		tracker.InitChain(ctx)
		tracker.InitTokenUsage(ctx)
	}

	tracker.Push(one, Entry{Source: "A", Type: TypeAgent})
	tracker.AddTokenUsage(one, TokenUsage{"prompt_tokens": 1})

	tracker.Push(two, Entry{Source: "B", Type: TypeAgent})
	tracker.ClearChain(two)
	tracker.ClearTokenUsage(two)

	tracker.Push(one, Entry{Source: "gpt", Type: TypeLLM})
	tracker.AddTokenUsage(one, TokenUsage{"prompt_tokens": 1})

	assert.Equal(t, []Entry{{Source: "A", Type: TypeAgent}, {Source: "gpt", Type: TypeLLM}}, tracker.Chain(one))
	assert.Equal(t, TokenUsage{"prompt_tokens": 2}, tracker.TokenUsage(one))
	assert.Equal(t, "shared", m.TraceId(one))
	assert.Len(t, tracker.records, 1)
}

func TestTrackerReturnsCopies(t *testing.T) {
	tracker, ctx := newTraced(t, "t1")

	tracker.InitChain(ctx)
	tracker.InitTokenUsage(ctx)
	tracker.Push(ctx, Entry{Source: "A", Type: TypeAgent})
	tracker.AddTokenUsage(ctx, TokenUsage{"a": 1})

	chain := tracker.Chain(ctx)
	chain[0].Source = "mutated"
	usage := tracker.TokenUsage(ctx)
	usage["a"] = 100

	assert.Equal(t, "A", tracker.Chain(ctx)[0].Source)
	assert.Equal(t, 1, tracker.TokenUsage(ctx)["a"])
}
