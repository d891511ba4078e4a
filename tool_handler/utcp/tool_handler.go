package utcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/universal-tool-calling-protocol/go-utcp"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

type utcpToolHandler struct {
	options  toolhandler.Options
	client   utcp.UtcpClientInterface
	toolName string
	spec     toolhandler.ToolSpec
	timeout  time.Duration
}

func (th *utcpToolHandler) Spec() toolhandler.ToolSpec {
	return th.spec
}

func (th *utcpToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	if th.client == nil {
		return toolhandler.ToolResponse{}, fmt.Errorf("utcp: no client for tool %s", th.toolName)
	}

	if th.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, th.timeout)
		defer cancel()
	}

	raw, err := th.client.CallTool(ctx, th.toolName, req.Arguments)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return toolhandler.ToolResponse{
		Content: renderResult(raw),
		Metadata: map[string]string{
			"source": "utcp",
			"tool":   th.toolName,
		},
	}, nil
}

// renderResult flattens a remote result into text. Structured results are
// sent back as JSON.
func renderResult(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if s, ok := v["result"].(string); ok && len(v) == 1 {
			return s
		}
	}

	if b, err := json.Marshal(raw); err == nil {
		return string(b)
	}

	return fmt.Sprintf("%v", raw)
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &utcpToolHandler{
		options: options,
	}

	if client, ok := UtcpClientFrom(options.Context); ok {
		th.client = client
	}

	if name, ok := ToolNameFrom(options.Context); ok {
		th.toolName = name
	}

	if d, ok := CallTimeoutFrom(options.Context); ok {
		th.timeout = d
	}

	if spec, ok := ToolSpecFrom(options.Context); ok {
		th.spec = spec
	} else {
		th.spec = toolhandler.ToolSpec{Name: th.toolName}
	}

	return th
}
