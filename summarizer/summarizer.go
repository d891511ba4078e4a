package summarizer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/w-h-a/agentmem/memory"
)

const (
	defaultInstructions = "Progressively summarize the conversation below so it can stand in for the original messages. Keep names, decisions, open questions and facts the assistant will need later. Do not add anything that was not said."
)

type generatorSummarizer struct {
	options Options
}

func (s *generatorSummarizer) Summarize(ctx context.Context, messages []memory.Message, budget int) (string, error) {
	if len(messages) == 0 || budget <= 0 {
		return "", nil
	}

	rsp, err := s.options.Generator.Generate(ctx, s.buildPrompt(messages, budget))
	if err != nil {
		return "", fmt.Errorf("summarizer: %w", err)
	}

	return strings.TrimSpace(rsp.Text), nil
}

func (s *generatorSummarizer) buildPrompt(messages []memory.Message, budget int) string {
	var sb bytes.Buffer

	sb.WriteString(s.options.Instructions)
	sb.WriteString(fmt.Sprintf("\nThe summary must fit in %d tokens.\n", budget))

	sb.WriteString("\nConversation:\n")
	for _, msg := range messages {
		role := msg.Type
		if len(role) == 0 {
			role = "message"
		}
		if len(msg.Source) > 0 {
			role = role + ":" + msg.Source
		}
		sb.WriteString(fmt.Sprintf("[%s]: %s\n", role, strings.TrimSpace(msg.Content)))
	}

	sb.WriteString("\nSummary:\n")

	return sb.String()
}

// NewSummarizer builds a memory.Summarizer on top of a generator.
func NewSummarizer(opts ...Option) memory.Summarizer {
	options := NewOptions(opts...)

	if options.Generator == nil {
		panic("summarizer requires a generator")
	}

	return &generatorSummarizer{
		options: options,
	}
}
