package monitor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/agentmem/trace"
)

var fixedNow = time.Date(2024, 5, 1, 13, 45, 30, 0, time.UTC)

func newTestMonitor(t *testing.T, opts ...Option) (*Monitor, context.Context, *bytes.Buffer) {
	t.Helper()

	tracker := trace.NewTracker(trace.NewManager())
	base := []Option{
		WithDir(t.TempDir()),
		WithClock(func() time.Time { return fixedNow }),
	}
	m := NewMonitor(tracker, append(base, opts...)...)

	var buf bytes.Buffer
	ctx := clog.WithLogger(context.Background(), clog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = tracker.Manager().Begin(ctx)
	tracker.Manager().SetTraceId(ctx, "t1")
	tracker.InitChain(ctx)
	tracker.Push(ctx, trace.Entry{Source: "bot", Type: trace.TypeAgent})

	return m, ctx, &buf
}

func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())

	return records
}

func TestLLMInvocationRecords(t *testing.T) {
	m, ctx, _ := newTestMonitor(t, WithActivate(true), WithLogActivate(false))

	require.NoError(t, m.TraceLLMInvocation(ctx, "gpt", "prompt one", map[string]any{"text": "answer", "bad": make(chan int)}, 1500*time.Millisecond))
	require.NoError(t, m.TraceLLMInvocation(ctx, "gpt", "prompt two", "answer two", time.Second))

	records := readRecords(t, filepath.Join(m.Options().Dir, "llm_invocation", "llm_2024-05-01-13.jsonl"))
	require.Len(t, records, 2)

	assert.Equal(t, "gpt", records[0]["source"])
	assert.Equal(t, "2024-05-01 13:45:30", records[0]["date"])
	assert.Equal(t, "prompt one", records[0]["llm_input"])
	assert.Equal(t, map[string]any{"text": "answer"}, records[0]["llm_output"])
	assert.Equal(t, 1.5, records[0]["cost"])
	assert.Equal(t, "prompt two", records[1]["llm_input"])
}

func TestAgentAndToolRecordsAreSplitBySource(t *testing.T) {
	m, ctx, _ := newTestMonitor(t, WithActivate(true))

	require.NoError(t, m.TraceAgentInvocation(ctx, "bot", map[string]any{"input": "q"}, map[string]any{"output": "a"}, 0))
	require.NoError(t, m.TraceToolInvocation(ctx, "echo", map[string]any{"input": "x"}, "x", 0))

	agent := readRecords(t, filepath.Join(m.Options().Dir, "agent_invocation", "agent_bot_2024-05-01-13.jsonl"))
	require.Len(t, agent, 1)
	assert.Equal(t, map[string]any{"input": "q"}, agent[0]["agent_input"])
	assert.Equal(t, map[string]any{"output": "a"}, agent[0]["agent_output"])

	tool := readRecords(t, filepath.Join(m.Options().Dir, "tool_invocation", "tool_echo_2024-05-01-13.jsonl"))
	require.Len(t, tool, 1)
	assert.Equal(t, "x", tool[0]["tool_output"])
}

func TestActivateOffWritesNothing(t *testing.T) {
	m, ctx, buf := newTestMonitor(t)

	require.NoError(t, m.TraceLLMInvocation(ctx, "gpt", "p", "r", 0))

	_, err := os.Stat(filepath.Join(m.Options().Dir, "llm_invocation"))
	assert.True(t, os.IsNotExist(err))

	assert.Contains(t, buf.String(), `"log_type":"llm_invocation"`)
}

func TestLogActivateControlsLogging(t *testing.T) {
	m, ctx, buf := newTestMonitor(t)

	m.TraceAgentInput(ctx, "bot", map[string]any{"input": "hello"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "agent_input", line["log_type"])
	assert.Equal(t, "bot", line["source"])
	assert.Equal(t, "source: bot, type: agent | ", line["chain"])
	assert.Equal(t, map[string]any{"trace_id": "t1"}, line["trace"])
	assert.Equal(t, map[string]any{"input": "hello"}, line["agent_input"])

	quiet, qctx, qbuf := newTestMonitor(t, WithLogActivate(false))
	quiet.TraceAgentInput(qctx, "bot", "hello")
	require.NoError(t, quiet.TraceAgentInvocation(qctx, "bot", "hello", "bye", 0))
	assert.Empty(t, qbuf.String())
}

func TestRecordsAlwaysCarryInputAndOutput(t *testing.T) {
	m, ctx, _ := newTestMonitor(t, WithActivate(true), WithLogActivate(false))

	require.NoError(t, m.TraceAgentInvocation(ctx, "bot", nil, make(chan int), 0))

	records := readRecords(t, filepath.Join(m.Options().Dir, "agent_invocation", "agent_bot_2024-05-01-13.jsonl"))
	require.Len(t, records, 1)

	assert.Contains(t, records[0], "agent_input")
	assert.Contains(t, records[0], "agent_output")
	assert.Nil(t, records[0]["agent_input"])
	assert.Nil(t, records[0]["agent_output"])
}

func TestLLMInvocationLogCarriesTokenUsage(t *testing.T) {
	m, ctx, buf := newTestMonitor(t)

	m.Tracker().InitTokenUsage(ctx)
	m.Tracker().AddTokenUsage(ctx, trace.TokenUsage{"prompt_tokens": 4, "completion_tokens": 2})

	require.NoError(t, m.TraceLLMInvocation(ctx, "gpt", "p", "r", 0))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "llm_invocation", line["log_type"])
	assert.Equal(t, map[string]any{"prompt_tokens": float64(4), "completion_tokens": float64(2)}, line["token_usage"])
}

func TestWriterUnavailable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	m, ctx, _ := newTestMonitor(t, WithActivate(true), WithDir(blocker))

	err := m.TraceLLMInvocation(ctx, "gpt", "p", "r", 0)
	assert.ErrorIs(t, err, ErrWriterUnavailable)
}

func TestRecordFileNames(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 2*60*60))

	dir, file := recordFile(kindLLM, "ignored", at)
	assert.Equal(t, "llm_invocation", dir)
	assert.Equal(t, "llm_2024-01-02-01.jsonl", file)

	dir, file = recordFile(kindAgent, "my/agent", at)
	assert.Equal(t, "agent_invocation", dir)
	assert.Equal(t, "agent_my_agent_2024-01-02-01.jsonl", file)
}
