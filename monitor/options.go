package monitor

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Dir         string
	Activate    bool
	LogActivate bool
	Clock       func() time.Time
	Context     context.Context
}

// WithDir sets the root directory for invocation records.
func WithDir(dir string) Option {
	return func(o *Options) {
		o.Dir = dir
	}
}

// WithActivate turns invocation record files on or off.
func WithActivate(on bool) Option {
	return func(o *Options) {
		o.Activate = on
	}
}

// WithLogActivate turns structured trace logging on or off.
func WithLogActivate(on bool) Option {
	return func(o *Options) {
		o.LogActivate = on
	}
}

func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.Clock = clock
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Dir:         "./monitor",
		Activate:    false,
		LogActivate: true,
		Clock:       time.Now,
		Context:     context.Background(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	return options
}
