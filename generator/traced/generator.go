package traced

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/w-h-a/agentmem/generator"
	"github.com/w-h-a/agentmem/monitor"
	"github.com/w-h-a/agentmem/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type tracedGenerator struct {
	options generator.Options
	inner   generator.Generator
	monitor *monitor.Monitor
}

// Generate runs the wrapped generator as an llm frame of the invocation
// chain and folds its token usage into the trace.
func (g *tracedGenerator) Generate(ctx context.Context, prompt string) (generator.Response, error) {
	source := g.options.Model
	tracker := g.monitor.Tracker()

	tracker.Push(ctx, trace.Entry{Source: source, Type: trace.TypeLLM})
	defer tracker.Pop(ctx)

	g.monitor.TraceLLMInput(ctx, source, prompt)

	tr := otel.Tracer("agentmem.generator", oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, span := tr.Start(ctx, "llm.generate", oteltrace.WithAttributes(
		attribute.String("llm.model", source),
		attribute.String("trace_id", tracker.Manager().TraceId(ctx)),
	))
	defer span.End()

	start := time.Now()

	rsp, err := g.inner.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return rsp, err
	}

	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", rsp.Usage[generator.UsagePromptTokens]),
		attribute.Int("llm.completion_tokens", rsp.Usage[generator.UsageCompletionTokens]),
	)
	span.SetStatus(codes.Ok, "")

	tracker.AddTokenUsage(ctx, trace.TokenUsage(rsp.Usage))

	output := map[string]any{
		"text":  rsp.Text,
		"usage": rsp.Usage,
	}

	if err := g.monitor.TraceLLMInvocation(ctx, source, prompt, output, time.Since(start)); err != nil {
		clog.FromContext(ctx).Warn("failed to record llm invocation", "error", err, "source", source)
	}

	return rsp, nil
}

// NewGenerator wraps the generator given by WithGenerator. WithModel names
// the chain entries and records.
func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &tracedGenerator{
		options: options,
	}

	if inner, ok := GeneratorFrom(options.Context); ok {
		g.inner = inner
	} else {
		panic("traced generator requires a generator")
	}

	if m, ok := MonitorFrom(options.Context); ok && m != nil {
		g.monitor = m
	} else {
		g.monitor = monitor.NewMonitor(nil, monitor.WithLogActivate(false))
	}

	if len(g.options.Model) == 0 {
		g.options.Model = "llm"
	}

	return g
}
