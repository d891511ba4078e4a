package trace

import "context"

type Option func(*Options)

type Options struct {
	IdGenerator func() string
	MeterName   string
	Context     context.Context
}

func WithIdGenerator(fn func() string) Option {
	return func(o *Options) {
		o.IdGenerator = fn
	}
}

func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		IdGenerator: defaultIdGenerator,
		MeterName:   "agentmem.trace",
		Context:     context.Background(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	return options
}
