package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
	"github.com/w-h-a/agentmem/tokenizer"
)

const fallbackEncoding = "cl100k_base"

func init() {
	tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
}

type bpeTokenizer struct {
	encoding *tiktoken.Tiktoken
}

func (t *bpeTokenizer) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// NewTokenizer returns a BPE tokenizer for model, using cl100k_base for
// models tiktoken does not know.
func NewTokenizer(model string) (tokenizer.Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("tiktoken: failed to load %s: %w", fallbackEncoding, err)
		}
	}

	return &bpeTokenizer{encoding: enc}, nil
}
