package tiktoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizerCountsWithOfflineEncoding(t *testing.T) {
	tok, err := NewTokenizer("gpt-4")
	require.NoError(t, err)

	assert.Equal(t, 0, tok.Count(""))
	assert.Equal(t, 2, tok.Count("hello world"))
}

func TestTokenizerFallsBackForUnknownModel(t *testing.T) {
	tok, err := NewTokenizer("some-unknown-model")
	require.NoError(t, err)

	assert.Equal(t, 2, tok.Count("hello world"))
}
