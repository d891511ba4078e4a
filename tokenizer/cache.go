package tokenizer

import (
	"github.com/dgraph-io/ristretto"
)

type cachedTokenizer struct {
	tokenizer Tokenizer
	cache     *ristretto.Cache
}

func (c *cachedTokenizer) Count(text string) int {
	if v, ok := c.cache.Get(text); ok {
		if n, ok := v.(int); ok {
			return n
		}
	}

	n := c.tokenizer.Count(text)

	c.cache.Set(text, n, 1)

	return n
}

// Close stops the cache's background goroutines. Count must not be called
// afterwards.
func (c *cachedTokenizer) Close() error {
	c.cache.Close()
	return nil
}

// NewCachedTokenizer memoizes t for up to maxEntries distinct texts. The
// result implements io.Closer.
func NewCachedTokenizer(t Tokenizer, maxEntries int64) (Tokenizer, error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &cachedTokenizer{
		tokenizer: t,
		cache:     cache,
	}, nil
}
