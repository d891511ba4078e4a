package tokenizer

// Tokenizer counts the model tokens in a piece of text. Implementations must
// be pure and safe for concurrent use.
type Tokenizer interface {
	Count(text string) int
}

// TokenizerFunc adapts a function to Tokenizer.
type TokenizerFunc func(text string) int

func (f TokenizerFunc) Count(text string) int {
	return f(text)
}
