package memories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/agentmem/memory"
	"github.com/w-h-a/agentmem/memory/buffer"
)

func TestServiceRegistersByName(t *testing.T) {
	s, err := New(
		buffer.NewMemory(memory.WithName("short")),
		buffer.NewMemory(memory.WithName("long")),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"long", "short"}, s.Names())

	err = s.Register(buffer.NewMemory(memory.WithName("short")))
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceRoutesOperations(t *testing.T) {
	ctx := context.Background()

	s, err := New(buffer.NewMemory(memory.WithName("short")))
	require.NoError(t, err)

	msgs := []memory.Message{
		{Type: memory.TypeHuman, Content: "a"},
		{Type: memory.TypeAI, Content: "b"},
	}

	require.NoError(t, s.Append(ctx, "short", msgs, memory.WithAddSessionId("s1")))
	require.NoError(t, s.Append(ctx, "short", msgs[:1], memory.WithAddSessionId("s2")))

	got, err := s.Messages(ctx, "short", memory.WithGetSessionId("s1"))
	require.NoError(t, err)
	assert.Equal(t, msgs, got)

	require.NoError(t, s.Forget(ctx, "short", memory.WithDeleteSessionId("s1")))

	got, err = s.Messages(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, msgs[:1], got)

	require.NoError(t, s.Forget(ctx, "short"))

	got, err = s.Messages(ctx, "short")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Messages(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
