package summarizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/agentmem/generator"
	"github.com/w-h-a/agentmem/memory"
)

type recordingGenerator struct {
	prompts []string
	text    string
	err     error
}

func (g *recordingGenerator) Generate(_ context.Context, prompt string) (generator.Response, error) {
	g.prompts = append(g.prompts, prompt)
	return generator.Response{Text: g.text}, g.err
}

func TestSummarizeBuildsBudgetedPrompt(t *testing.T) {
	gen := &recordingGenerator{text: "  they said hello  "}
	s := NewSummarizer(WithGenerator(gen))

	got, err := s.Summarize(context.Background(), []memory.Message{
		{Type: memory.TypeHuman, Content: "hello"},
		{Type: memory.TypeAI, Content: "hi", Source: "bot"},
		{Content: "untyped"},
	}, 42)
	require.NoError(t, err)

	assert.Equal(t, "they said hello", got)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "fit in 42 tokens")
	assert.Contains(t, gen.prompts[0], "[human]: hello\n[ai:bot]: hi\n[message]: untyped\n")
}

func TestSummarizeSkipsWithoutRoom(t *testing.T) {
	gen := &recordingGenerator{text: "x"}
	s := NewSummarizer(WithGenerator(gen))

	got, err := s.Summarize(context.Background(), []memory.Message{{Content: "a"}}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Summarize(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Empty(t, gen.prompts)
}

func TestSummarizeWrapsGeneratorErrors(t *testing.T) {
	boom := errors.New("boom")
	s := NewSummarizer(WithGenerator(&recordingGenerator{err: boom}))

	_, err := s.Summarize(context.Background(), []memory.Message{{Content: "a"}}, 10)
	assert.ErrorIs(t, err, boom)
}
