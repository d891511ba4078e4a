package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

func TestClock(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	th := NewToolHandler(WithNow(func() time.Time { return at }))

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T12:00:00Z", rsp.Content)

	rsp, err = th.Invoke(context.Background(), toolhandler.ToolRequest{Arguments: map[string]any{"input": "2006-01-02"}})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", rsp.Content)
}
