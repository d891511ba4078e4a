package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/agentmem/memory"
	"github.com/w-h-a/agentmem/tokenizer"
)

// one token per byte keeps budgets readable
func byteTokenizers() *tokenizer.Registry {
	return tokenizer.NewRegistry(tokenizer.TokenizerFunc(func(s string) int { return len(s) }))
}

func msgs(contents ...string) []memory.Message {
	out := make([]memory.Message, 0, len(contents))
	for _, c := range contents {
		out = append(out, memory.Message{Type: memory.TypeHuman, Content: c})
	}
	return out
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
	got     []memory.Message
	budget  int
}

func (f *fakeSummarizer) Summarize(_ context.Context, messages []memory.Message, budget int) (string, error) {
	f.calls++
	f.got = messages
	f.budget = budget
	return f.summary, f.err
}

func newPruner(max int, s memory.Summarizer) *memory.Pruner {
	return memory.NewPruner(memory.NewOptions(
		memory.WithName("test"),
		memory.WithMaxTokens(max),
		memory.WithTokenizers(byteTokenizers()),
		memory.WithSummarizer(s),
	))
}

func TestCountTokensIsSumOfMessages(t *testing.T) {
	reg := byteTokenizers()

	assert.Equal(t, 0, memory.CountTokens(reg, "m", nil))
	assert.Equal(t, 7, memory.CountTokens(reg, "m", msgs("abc", "defg")))
}

func TestTruncateWithinBudgetIsIdentity(t *testing.T) {
	p := newPruner(10, nil)
	in := msgs("aaa", "bbb", "cccc")

	kept, pruned := p.Truncate(in)
	assert.Empty(t, pruned)
	if diff := cmp.Diff(in, kept); diff != "" {
		t.Errorf("Truncate() mismatch (-want +got):\n%s", diff)
	}

	again, _ := p.Truncate(kept)
	assert.Equal(t, kept, again)
}

func TestTruncateDropsStrictPrefix(t *testing.T) {
	p := newPruner(6, nil)
	in := msgs("aaa", "bb", "cc", "dddd")

	kept, pruned := p.Truncate(in)

	assert.Equal(t, msgs("aaa", "bb"), pruned)
	assert.Equal(t, msgs("cc", "dddd"), kept)
	assert.LessOrEqual(t, memory.CountTokens(byteTokenizers(), "", kept), 6)
	assert.Equal(t, in, append(append([]memory.Message{}, pruned...), kept...))
}

func TestTruncateShrinksMonotonically(t *testing.T) {
	for max := 0; max <= 12; max++ {
		p := newPruner(max, nil)
		in := msgs("a", "bb", "ccc", "dddd", "e")

		kept, _ := p.Truncate(in)

		assert.LessOrEqual(t, len(kept), len(in))
		if max > 0 {
			assert.LessOrEqual(t, memory.CountTokens(byteTokenizers(), "", kept), max)
		}
	}
}

func TestTruncateSingleOversizedMessage(t *testing.T) {
	p := newPruner(3, nil)

	kept, pruned := p.Truncate(msgs("way too long"))

	assert.Empty(t, kept)
	assert.Len(t, pruned, 1)

	kept, pruned = p.Truncate(nil)
	assert.Empty(t, kept)
	assert.Empty(t, pruned)
}

func TestTruncateDisabledBudget(t *testing.T) {
	p := newPruner(0, nil)
	in := msgs("anything", "goes")

	kept, pruned := p.Truncate(in)
	assert.Equal(t, in, kept)
	assert.Empty(t, pruned)
}

func TestSummarizeReinsertsSummaryAtFront(t *testing.T) {
	s := &fakeSummarizer{summary: "sum"}
	p := newPruner(6, s)

	out := p.Summarize(context.Background(), msgs("aaa", "bb", "cc", "dddd"))

	require.Equal(t, 1, s.calls)
	assert.Equal(t, msgs("aaa", "bb"), s.got)
	assert.Equal(t, 0, s.budget)
	require.Len(t, out, 3)
	assert.Equal(t, memory.Message{Type: memory.TypeSummary, Content: "sum"}, out[0])
	assert.Equal(t, msgs("cc", "dddd"), out[1:])
}

// The summary is not counted against the budget once reinserted, so the
// result can exceed it.
func TestSummarizeCanExceedBudget(t *testing.T) {
	s := &fakeSummarizer{summary: "a summary far longer than the budget"}
	p := newPruner(5, s)

	out := p.Summarize(context.Background(), msgs("aaaa", "bbbb"))

	assert.Equal(t, 1, s.budget)
	assert.Greater(t, memory.CountTokens(byteTokenizers(), "", out), 5)
}

func TestSummarizeSkipsWhenNothingPruned(t *testing.T) {
	s := &fakeSummarizer{summary: "sum"}
	p := newPruner(100, s)
	in := msgs("a", "b")

	out := p.Summarize(context.Background(), in)

	assert.Equal(t, 0, s.calls)
	assert.Equal(t, in, out)
}

func TestSummarizeEmptyOrFailedSummary(t *testing.T) {
	empty := &fakeSummarizer{}
	out := newPruner(4, empty).Summarize(context.Background(), msgs("aaaa", "bbbb"))
	assert.Equal(t, msgs("bbbb"), out)

	failing := &fakeSummarizer{err: errors.New("boom")}
	out = newPruner(4, failing).Summarize(context.Background(), msgs("aaaa", "bbbb"))
	assert.Equal(t, msgs("bbbb"), out)
}
