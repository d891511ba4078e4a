package buffer

import (
	"context"

	"github.com/w-h-a/agentmem/memory"
)

type windowSizeKey struct{}

// WithWindowSize caps how many messages the buffer holds. The oldest go
// first. Zero keeps everything.
func WithWindowSize(n int) memory.Option {
	return func(o *memory.Options) {
		o.Context = context.WithValue(o.Context, windowSizeKey{}, n)
	}
}

func WindowSizeFrom(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(windowSizeKey{}).(int)
	return n, ok
}
