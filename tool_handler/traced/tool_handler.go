package traced

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/w-h-a/agentmem/monitor"
	"github.com/w-h-a/agentmem/trace"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type tracedToolHandler struct {
	inner   toolhandler.ToolHandler
	monitor *monitor.Monitor
}

func (th *tracedToolHandler) Spec() toolhandler.ToolSpec {
	return th.inner.Spec()
}

func (th *tracedToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	name := th.inner.Spec().Name
	tracker := th.monitor.Tracker()

	tracker.Push(ctx, trace.Entry{Source: name, Type: trace.TypeTool})
	defer tracker.Pop(ctx)

	th.monitor.TraceToolInput(ctx, name, req)

	tr := otel.Tracer("agentmem.tool", oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, span := tr.Start(ctx, "tool.invoke", oteltrace.WithAttributes(
		attribute.String("tool.name", name),
	))
	defer span.End()

	start := time.Now()

	rsp, err := th.inner.Invoke(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return rsp, err
	}

	span.SetStatus(codes.Ok, "")

	if err := th.monitor.TraceToolInvocation(ctx, name, req, rsp, time.Since(start)); err != nil {
		clog.FromContext(ctx).Warn("failed to record tool invocation", "error", err, "tool", name)
	}

	return rsp, nil
}

// NewToolHandler wraps inner so each call becomes a tool frame of the
// invocation chain.
func NewToolHandler(inner toolhandler.ToolHandler, m *monitor.Monitor) toolhandler.ToolHandler {
	if m == nil {
		m = monitor.NewMonitor(nil, monitor.WithLogActivate(false))
	}

	return &tracedToolHandler{
		inner:   inner,
		monitor: m,
	}
}
