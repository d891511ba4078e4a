package memory

import (
	"context"

	"github.com/chainguard-dev/clog"
	"github.com/w-h-a/agentmem/tokenizer"
)

// CountTokens is the token count of messages under model's tokenizer. It is
// the sum of the per-message counts.
func CountTokens(reg *tokenizer.Registry, model string, messages []Message) int {
	t := reg.Lookup(model)

	total := 0
	for _, msg := range messages {
		total += t.Count(msg.Content)
	}

	return total
}

// Pruner enforces a token budget on message sequences.
type Pruner struct {
	options Options
}

// Truncate drops messages from the oldest end until the rest fits the
// budget. A sequence already within budget comes back unchanged. The dropped
// prefix is returned as pruned.
func (p *Pruner) Truncate(messages []Message) (kept []Message, pruned []Message) {
	if p.options.MaxTokens <= 0 {
		return messages, nil
	}

	t := p.options.Tokenizers.Lookup(p.options.Model)

	counts := make([]int, len(messages))
	total := 0
	for i, msg := range messages {
		counts[i] = t.Count(msg.Content)
		total += counts[i]
	}

	if total <= p.options.MaxTokens {
		return messages, nil
	}

	cut := 0
	for cut < len(messages) && total > p.options.MaxTokens {
		total -= counts[cut]
		cut++
	}

	prunedMessages.WithLabelValues(p.options.Name).Add(float64(cut))

	return messages[cut:], messages[:cut]
}

// Summarize truncates like Truncate and then asks the summarizer to stand in
// for the dropped prefix, with whatever budget the remainder leaves. A
// non-empty summary goes in front of the remainder. The combined sequence is
// not counted again and may exceed the budget.
func (p *Pruner) Summarize(ctx context.Context, messages []Message) []Message {
	kept, pruned := p.Truncate(messages)
	if len(pruned) == 0 || p.options.Summarizer == nil {
		return kept
	}

	budget := p.options.MaxTokens - CountTokens(p.options.Tokenizers, p.options.Model, kept)

	summary, err := p.options.Summarizer.Summarize(ctx, pruned, budget)
	if err != nil {
		clog.FromContext(ctx).With("memory", p.options.Name, "pruned", len(pruned)).
			Warn("failed to summarize pruned messages", "error", err)
		summaries.WithLabelValues(p.options.Name, "error").Inc()
		return kept
	}

	if len(summary) == 0 {
		summaries.WithLabelValues(p.options.Name, "empty").Inc()
		return kept
	}

	summaries.WithLabelValues(p.options.Name, "inserted").Inc()

	out := make([]Message, 0, len(kept)+1)
	out = append(out, Message{Type: TypeSummary, Content: summary})
	out = append(out, kept...)

	return out
}

func NewPruner(options Options) *Pruner {
	if options.Tokenizers == nil {
		options.Tokenizers = tokenizer.NewRegistry(nil)
	}

	return &Pruner{
		options: options,
	}
}
