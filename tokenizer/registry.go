package tokenizer

import (
	"errors"
	"io"
	"strings"
	"sync"
)

// Registry selects a Tokenizer by model family. A family is a model name
// prefix; the longest registered prefix wins.
type Registry struct {
	mtx      sync.RWMutex
	families map[string]Tokenizer
	fallback Tokenizer
}

func (r *Registry) Register(prefix string, t Tokenizer) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.families[strings.ToLower(prefix)] = t
}

func (r *Registry) Lookup(model string) Tokenizer {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	model = strings.ToLower(model)

	var (
		best    Tokenizer
		bestLen = -1
	)

	for prefix, t := range r.families {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best = t
			bestLen = len(prefix)
		}
	}

	if best == nil {
		return r.fallback
	}

	return best
}

// CountTokens sums the counts of texts under the model's tokenizer.
func (r *Registry) CountTokens(model string, texts ...string) int {
	t := r.Lookup(model)

	total := 0
	for _, text := range texts {
		total += t.Count(text)
	}

	return total
}

// Close releases every registered tokenizer that holds resources, the
// fallback included. Each one is closed once even when registered under
// several prefixes.
func (r *Registry) Close() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	closed := map[io.Closer]bool{}
	var errs []error

	release := func(t Tokenizer) {
		c, ok := t.(io.Closer)
		if !ok || closed[c] {
			return
		}
		closed[c] = true
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	for _, t := range r.families {
		release(t)
	}
	release(r.fallback)

	return errors.Join(errs...)
}

// NewRegistry builds an empty registry. A nil fallback uses the estimate tokenizer.
func NewRegistry(fallback Tokenizer) *Registry {
	if fallback == nil {
		fallback = NewEstimateTokenizer()
	}

	return &Registry{
		families: map[string]Tokenizer{},
		fallback: fallback,
	}
}
