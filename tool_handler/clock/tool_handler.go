package clock

import (
	"context"
	"time"

	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

type nowKey struct{}

// WithNow replaces the time source.
func WithNow(now func() time.Time) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, nowKey{}, now)
	}
}

func NowFrom(ctx context.Context) (func() time.Time, bool) {
	now, ok := ctx.Value(nowKey{}).(func() time.Time)
	return now, ok
}

type clockToolHandler struct {
	options toolhandler.Options
	now     func() time.Time
}

func (th *clockToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        "time",
		Description: "Returns the current UTC time. An optional Go layout formats it.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{
					"type":        "string",
					"description": "Optional time layout, RFC3339 by default.",
				},
			},
		},
	}
}

func (th *clockToolHandler) Invoke(_ context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	layout := time.RFC3339
	if s, ok := req.Arguments["input"].(string); ok && len(s) > 0 {
		layout = s
	}

	return toolhandler.ToolResponse{Content: th.now().UTC().Format(layout)}, nil
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &clockToolHandler{
		options: options,
		now:     time.Now,
	}

	if now, ok := NowFrom(options.Context); ok {
		th.now = now
	}

	return th
}
