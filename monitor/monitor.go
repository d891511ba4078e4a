package monitor

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/w-h-a/agentmem/trace"
)

const (
	kindLLM   = "llm"
	kindAgent = "agent"
	kindTool  = "tool"
)

// Monitor emits trace logs and invocation records for agent, tool and llm
// calls. Logging and record files are switched independently.
type Monitor struct {
	options Options
	tracker *trace.Tracker
	writer  *recordWriter
}

func (m *Monitor) Tracker() *trace.Tracker {
	return m.tracker
}

func (m *Monitor) Options() Options {
	return m.options
}

func (m *Monitor) TraceLLMInput(ctx context.Context, source string, input any) {
	m.traceInput(ctx, kindLLM, source, input)
}

func (m *Monitor) TraceLLMInvocation(ctx context.Context, source string, input any, output any, cost time.Duration) error {
	return m.traceInvocation(ctx, kindLLM, source, input, output, cost)
}

func (m *Monitor) TraceAgentInput(ctx context.Context, source string, input any) {
	m.traceInput(ctx, kindAgent, source, input)
}

func (m *Monitor) TraceAgentInvocation(ctx context.Context, source string, input any, output any, cost time.Duration) error {
	return m.traceInvocation(ctx, kindAgent, source, input, output, cost)
}

func (m *Monitor) TraceToolInput(ctx context.Context, source string, input any) {
	m.traceInput(ctx, kindTool, source, input)
}

func (m *Monitor) TraceToolInvocation(ctx context.Context, source string, input any, output any, cost time.Duration) error {
	return m.traceInvocation(ctx, kindTool, source, input, output, cost)
}

func (m *Monitor) traceInput(ctx context.Context, kind string, source string, input any) {
	if !m.options.LogActivate {
		return
	}

	payload := m.loggable(ctx, input)

	m.logger(ctx, kind+"_input", source).
		Info("trace "+kind+" input", kind+"_input", payload)
}

// traceInvocation logs the finished call and appends its record. Payloads
// that cannot be serialized are recorded as null.
func (m *Monitor) traceInvocation(ctx context.Context, kind string, source string, input any, output any, cost time.Duration) error {
	if !m.options.LogActivate && !m.options.Activate {
		return nil
	}

	in := m.loggable(ctx, input)
	out := m.loggable(ctx, output)

	if m.options.LogActivate {
		logger := m.logger(ctx, kind+"_invocation", source)
		if kind == kindLLM {
			logger = logger.With("token_usage", m.tracker.TokenUsage(ctx))
		}

		logger.Info("trace "+kind+" invocation",
			kind+"_input", in,
			kind+"_output", out,
			"cost", cost.Seconds(),
		)
	}

	if !m.options.Activate {
		return nil
	}

	now := m.options.Clock()

	record := map[string]any{
		"source":         source,
		"date":           now.UTC().Format(dateLayout),
		kind + "_input":  in,
		kind + "_output": out,
		"cost":           cost.Seconds(),
	}

	subdir, file := recordFile(kind, source, now)

	return m.writer.append(subdir, file, record)
}

func (m *Monitor) logger(ctx context.Context, logType string, source string) *clog.Logger {
	return clog.FromContext(ctx).With(
		"log_type", logType,
		"source", source,
		"trace", m.tracker.Manager().Current(ctx).Map(),
		"chain", m.tracker.RenderChain(ctx),
	)
}

func (m *Monitor) loggable(ctx context.Context, v any) any {
	out, err := Serialize(v)
	if err != nil {
		clog.FromContext(ctx).Warn("dropping unserializable payload", "error", err)
		return nil
	}
	return out
}

func NewMonitor(tracker *trace.Tracker, opts ...Option) *Monitor {
	options := NewOptions(opts...)

	if tracker == nil {
		tracker = trace.NewTracker(trace.NewManager())
	}

	return &Monitor{
		options: options,
		tracker: tracker,
		writer:  &recordWriter{dir: options.Dir},
	}
}
