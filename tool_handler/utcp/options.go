package utcp

import (
	"context"
	"time"

	"github.com/universal-tool-calling-protocol/go-utcp"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

type clientKey struct{}

// WithUtcpClient sets the client remote calls go through.
func WithUtcpClient(client utcp.UtcpClientInterface) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, clientKey{}, client)
	}
}

func UtcpClientFrom(ctx context.Context) (utcp.UtcpClientInterface, bool) {
	client, ok := ctx.Value(clientKey{}).(utcp.UtcpClientInterface)
	return client, ok
}

type toolNameKey struct{}

// WithToolName is the provider-qualified name passed to CallTool.
func WithToolName(name string) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, toolNameKey{}, name)
	}
}

func ToolNameFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(toolNameKey{}).(string)
	return name, ok
}

type toolSpecKey struct{}

// WithToolSpec overrides the spec shown to the model. It defaults to the
// bare tool name.
func WithToolSpec(spec toolhandler.ToolSpec) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, toolSpecKey{}, spec)
	}
}

func ToolSpecFrom(ctx context.Context) (toolhandler.ToolSpec, bool) {
	spec, ok := ctx.Value(toolSpecKey{}).(toolhandler.ToolSpec)
	return spec, ok
}

type callTimeoutKey struct{}

// WithCallTimeout bounds each remote call. Zero leaves the caller's deadline alone.
func WithCallTimeout(d time.Duration) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, callTimeoutKey{}, d)
	}
}

func CallTimeoutFrom(ctx context.Context) (time.Duration, bool) {
	d, ok := ctx.Value(callTimeoutKey{}).(time.Duration)
	return d, ok
}
