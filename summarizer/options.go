package summarizer

import (
	"context"

	"github.com/w-h-a/agentmem/generator"
)

type Option func(*Options)

type Options struct {
	Generator    generator.Generator
	Instructions string
	Context      context.Context
}

func WithGenerator(g generator.Generator) Option {
	return func(o *Options) {
		o.Generator = g
	}
}

// WithInstructions replaces the default summary instructions.
func WithInstructions(instructions string) Option {
	return func(o *Options) {
		o.Instructions = instructions
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Instructions: defaultInstructions,
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
