package tokenizer

import (
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokenizer(t *testing.T) {
	est := NewEstimateTokenizer()

	assert.Equal(t, 0, est.Count(""))
	assert.Equal(t, 1, est.Count("a"))
	assert.Equal(t, 1, est.Count("abcd"))
	assert.Equal(t, 2, est.Count("abcde"))
}

func TestRegistryLongestPrefixWins(t *testing.T) {
	reg := NewRegistry(TokenizerFunc(func(string) int { return 1 }))
	reg.Register("gpt-", TokenizerFunc(func(string) int { return 2 }))
	reg.Register("gpt-4o", TokenizerFunc(func(string) int { return 3 }))

	assert.Equal(t, 1, reg.Lookup("claude-3").Count("x"))
	assert.Equal(t, 2, reg.Lookup("gpt-3.5-turbo").Count("x"))
	assert.Equal(t, 3, reg.Lookup("GPT-4o-mini").Count("x"))
}

func TestRegistryCountTokens(t *testing.T) {
	reg := NewRegistry(nil)

	assert.Equal(t, 0, reg.CountTokens("any"))
	assert.Equal(t, 3, reg.CountTokens("any", "abcd", "abcdefgh"))
}

func TestCachedTokenizer(t *testing.T) {
	var calls atomic.Int32
	inner := TokenizerFunc(func(text string) int {
		calls.Add(1)
		return len(text)
	})

	cached, err := NewCachedTokenizer(inner, 100)
	require.NoError(t, err)

	assert.Equal(t, 5, cached.Count("hello"))
	cached.(*cachedTokenizer).cache.Wait()
	assert.Equal(t, 5, cached.Count("hello"))

	assert.Equal(t, int32(1), calls.Load())
}

type closingTokenizer struct {
	closes int
}

func (c *closingTokenizer) Count(text string) int { return len(text) }

func (c *closingTokenizer) Close() error {
	c.closes++
	return nil
}

func TestRegistryCloseReleasesTokenizersOnce(t *testing.T) {
	shared := &closingTokenizer{}
	fallback := &closingTokenizer{}

	reg := NewRegistry(fallback)
	reg.Register("gpt-", shared)
	reg.Register("o1", shared)
	reg.Register("plain", NewEstimateTokenizer())

	require.NoError(t, reg.Close())
	assert.Equal(t, 1, shared.closes)
	assert.Equal(t, 1, fallback.closes)
}

func TestCachedTokenizerClose(t *testing.T) {
	cached, err := NewCachedTokenizer(NewEstimateTokenizer(), 10)
	require.NoError(t, err)

	closer, ok := cached.(io.Closer)
	require.True(t, ok)
	assert.NoError(t, closer.Close())

	reg := NewRegistry(cached)
	assert.NoError(t, reg.Close())
}
