package echo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

func TestEcho(t *testing.T) {
	th := NewToolHandler()
	assert.Equal(t, "echo", th.Spec().Name)

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{Arguments: map[string]any{"input": "  hi  "}})
	require.NoError(t, err)
	assert.Equal(t, "hi", rsp.Content)

	_, err = th.Invoke(context.Background(), toolhandler.ToolRequest{Arguments: map[string]any{}})
	assert.Error(t, err)

	_, err = th.Invoke(context.Background(), toolhandler.ToolRequest{Arguments: map[string]any{"input": 3}})
	assert.Error(t, err)
}
