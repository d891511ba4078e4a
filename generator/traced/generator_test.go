package traced

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/agentmem/generator"
	"github.com/w-h-a/agentmem/monitor"
	"github.com/w-h-a/agentmem/trace"
)

type fakeGenerator struct {
	rsp     generator.Response
	err     error
	tracker *trace.Tracker
	chain   string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (generator.Response, error) {
	f.chain = f.tracker.RenderChain(ctx)
	return f.rsp, f.err
}

func setup(t *testing.T, inner *fakeGenerator) (generator.Generator, *trace.Tracker, context.Context) {
	t.Helper()

	tracker := trace.NewTracker(trace.NewManager())
	inner.tracker = tracker

	m := monitor.NewMonitor(tracker, monitor.WithLogActivate(false))

	g := NewGenerator(
		WithGenerator(inner),
		WithMonitor(m),
		generator.WithModel("gpt-test"),
	)

	ctx := tracker.Manager().Begin(context.Background())
	tracker.Manager().SetTraceId(ctx, "t1")
	tracker.InitChain(ctx)
	tracker.InitTokenUsage(ctx)
	tracker.Push(ctx, trace.Entry{Source: "bot", Type: trace.TypeAgent})

	return g, tracker, ctx
}

func TestTracedGeneratorAccumulatesUsage(t *testing.T) {
	inner := &fakeGenerator{rsp: generator.Response{Text: "hi", Usage: generator.NewUsage(10, 5, 0)}}
	g, tracker, ctx := setup(t, inner)

	rsp, err := g.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", rsp.Text)

	_, err = g.Generate(ctx, "again")
	require.NoError(t, err)

	assert.Equal(t, "source: bot, type: agent -> source: gpt-test, type: llm | ", inner.chain)
	assert.Equal(t, "source: bot, type: agent | ", tracker.RenderChain(ctx))
	assert.Equal(t, trace.TokenUsage{
		"prompt_tokens":     20,
		"completion_tokens": 10,
		"total_tokens":      30,
	}, tracker.TokenUsage(ctx))
}

func TestTracedGeneratorPopsOnError(t *testing.T) {
	boom := errors.New("boom")
	inner := &fakeGenerator{err: boom}
	g, tracker, ctx := setup(t, inner)

	_, err := g.Generate(ctx, "hello")
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, "source: bot, type: agent | ", tracker.RenderChain(ctx))
	assert.Equal(t, trace.TokenUsage{}, tracker.TokenUsage(ctx))
}

func TestTracedGeneratorWithoutTraceId(t *testing.T) {
	tracker := trace.NewTracker(trace.NewManager())
	inner := &fakeGenerator{rsp: generator.Response{Text: "ok"}, tracker: tracker}

	g := NewGenerator(WithGenerator(inner), WithMonitor(monitor.NewMonitor(tracker, monitor.WithLogActivate(false))))

	rsp, err := g.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", rsp.Text)
	assert.Equal(t, "", inner.chain)
}
