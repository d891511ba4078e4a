package tokenizer

import "unicode/utf8"

const charsPerToken = 4

type estimateTokenizer struct{}

// Count approximates one token per four characters, rounding up.
func (estimateTokenizer) Count(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}

// NewEstimateTokenizer returns the fallback used for model families without
// a registered tokenizer.
func NewEstimateTokenizer() Tokenizer {
	return estimateTokenizer{}
}
