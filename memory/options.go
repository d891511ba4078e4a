package memory

import (
	"context"

	"github.com/w-h-a/agentmem/tokenizer"
)

type Option func(*Options)

type Options struct {
	Name       string
	Model      string
	MaxTokens  int
	Tokenizers *tokenizer.Registry
	Summarizer Summarizer
	Context    context.Context
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithModel selects the tokenizer family used for budget counting.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens sets the budget. Zero or less disables pruning.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithTokenizers(reg *tokenizer.Registry) Option {
	return func(o *Options) {
		o.Tokenizers = reg
	}
}

func WithSummarizer(s Summarizer) Option {
	return func(o *Options) {
		o.Summarizer = s
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Name:      "memory",
		MaxTokens: 2000,
		Context:   context.Background(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Tokenizers == nil {
		options.Tokenizers = tokenizer.NewRegistry(nil)
	}

	return options
}

type AddOption func(*AddOptions)

type AddOptions struct {
	SessionId string
	AgentId   string
	Context   context.Context
}

func WithAddSessionId(id string) AddOption {
	return func(o *AddOptions) {
		o.SessionId = id
	}
}

func WithAddAgentId(id string) AddOption {
	return func(o *AddOptions) {
		o.AgentId = id
	}
}

func NewAddOptions(opts ...AddOption) AddOptions {
	options := AddOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type GetOption func(*GetOptions)

type GetOptions struct {
	SessionId string
	AgentId   string
	Source    string
	TopK      int
	Context   context.Context
}

func WithGetSessionId(id string) GetOption {
	return func(o *GetOptions) {
		o.SessionId = id
	}
}

func WithGetAgentId(id string) GetOption {
	return func(o *GetOptions) {
		o.AgentId = id
	}
}

func WithGetSource(source string) GetOption {
	return func(o *GetOptions) {
		o.Source = source
	}
}

// WithGetTopK keeps only the k most recent matches.
func WithGetTopK(k int) GetOption {
	return func(o *GetOptions) {
		o.TopK = k
	}
}

func NewGetOptions(opts ...GetOption) GetOptions {
	options := GetOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type DeleteOption func(*DeleteOptions)

type DeleteOptions struct {
	SessionId string
	AgentId   string
	Context   context.Context
}

func WithDeleteSessionId(id string) DeleteOption {
	return func(o *DeleteOptions) {
		o.SessionId = id
	}
}

func WithDeleteAgentId(id string) DeleteOption {
	return func(o *DeleteOptions) {
		o.AgentId = id
	}
}

func NewDeleteOptions(opts ...DeleteOption) DeleteOptions {
	options := DeleteOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
