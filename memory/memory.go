package memory

import (
	"context"
	"errors"
)

var (
	ErrConfiguration = errors.New("memory: configuration error")
)

// Memory stores an ordered conversation and enforces a token budget on reads.
type Memory interface {
	Name() string
	Add(ctx context.Context, messages []Message, opts ...AddOption) error
	Get(ctx context.Context, opts ...GetOption) ([]Message, error)
	Prune(ctx context.Context, messages []Message) ([]Message, error)
	Delete(ctx context.Context, opts ...DeleteOption) error
}

// Summarizer condenses messages into text of at most budget tokens. An empty
// result means nothing worth keeping.
type Summarizer interface {
	Summarize(ctx context.Context, messages []Message, budget int) (string, error)
}
