package echo

import (
	"context"
	"fmt"
	"strings"

	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

type echoToolHandler struct {
	options toolhandler.Options
}

func (th *echoToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        "echo",
		Description: "Echoes the provided text back to the caller.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{
					"type":        "string",
					"description": "Text to echo back.",
				},
			},
			"required": []any{"input"},
		},
		Examples: []map[string]any{
			{"input": "hello"},
		},
	}
}

func (th *echoToolHandler) Invoke(_ context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	raw, ok := req.Arguments["input"]
	if !ok {
		return toolhandler.ToolResponse{}, fmt.Errorf("echo: missing 'input' argument")
	}

	switch v := raw.(type) {
	case nil:
		return toolhandler.ToolResponse{}, nil
	case string:
		return toolhandler.ToolResponse{Content: strings.TrimSpace(v)}, nil
	default:
		return toolhandler.ToolResponse{}, fmt.Errorf("echo: argument 'input' must be a string, got %T", raw)
	}
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	return &echoToolHandler{
		options: toolhandler.NewOptions(opts...),
	}
}
