package generator

import "context"

const (
	UsagePromptTokens     = "prompt_tokens"
	UsageCompletionTokens = "completion_tokens"
	UsageTotalTokens      = "total_tokens"
)

// Usage counts the tokens one generation consumed, keyed by category.
type Usage map[string]int

type Response struct {
	Text  string
	Usage Usage
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (Response, error)
}

// NewUsage fills the three standard categories. A zero total is derived
// from the other two.
func NewUsage(prompt, completion, total int) Usage {
	if total == 0 {
		total = prompt + completion
	}

	return Usage{
		UsagePromptTokens:     prompt,
		UsageCompletionTokens: completion,
		UsageTotalTokens:      total,
	}
}
