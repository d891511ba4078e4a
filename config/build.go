package config

import (
	"fmt"

	"github.com/w-h-a/agentmem/connection"
	"github.com/w-h-a/agentmem/generator"
	"github.com/w-h-a/agentmem/generator/anthropic"
	"github.com/w-h-a/agentmem/generator/google"
	"github.com/w-h-a/agentmem/generator/openai"
	"github.com/w-h-a/agentmem/memory"
	"github.com/w-h-a/agentmem/memory/buffer"
	sqlmemory "github.com/w-h-a/agentmem/memory/sql"
	"github.com/w-h-a/agentmem/tokenizer"
	"github.com/w-h-a/agentmem/tokenizer/tiktoken"
)

const (
	GeneratorOpenAI    = "openai"
	GeneratorAnthropic = "anthropic"
	GeneratorGoogle    = "google"
)

// bpeFamilies maps model name prefixes to a model tiktoken resolves.
var bpeFamilies = map[string]string{
	"gpt-4o":          "gpt-4o",
	"gpt-":            "gpt-4",
	"o1":              "gpt-4o",
	"o3":              "gpt-4o",
	"text-embedding-": "text-embedding-3-small",
}

// BuildTokenizers registers BPE counters for the OpenAI families and falls
// back to the estimate for everything else. A positive cacheSize puts a
// count cache in front of each counter.
func BuildTokenizers(cacheSize int64) (*tokenizer.Registry, error) {
	wrap := func(t tokenizer.Tokenizer) (tokenizer.Tokenizer, error) {
		if cacheSize <= 0 {
			return t, nil
		}
		return tokenizer.NewCachedTokenizer(t, cacheSize)
	}

	fallback, err := wrap(tokenizer.NewEstimateTokenizer())
	if err != nil {
		return nil, fmt.Errorf("config: tokenizer cache: %w", err)
	}

	reg := tokenizer.NewRegistry(fallback)

	for prefix, model := range bpeFamilies {
		bpe, err := tiktoken.NewTokenizer(model)
		if err != nil {
			_ = reg.Close()
			return nil, fmt.Errorf("config: tokenizer for %s: %w", prefix, err)
		}

		t, err := wrap(bpe)
		if err != nil {
			_ = reg.Close()
			return nil, fmt.Errorf("config: tokenizer cache: %w", err)
		}

		reg.Register(prefix, t)
	}

	return reg, nil
}

func BuildRegistry(c *Components) (*connection.Registry, error) {
	reg := connection.NewRegistry()

	for _, spec := range c.Connections {
		err := reg.Register(spec.Name, connection.Config{
			Dialect:         connection.Dialect(spec.Dialect),
			DSN:             spec.DSN,
			MaxOpenConns:    spec.MaxOpenConns,
			ConnMaxLifetime: spec.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// BuildMemories constructs every declared memory. Memories with summarize
// set use summarizer when one is given.
func BuildMemories(c *Components, reg *connection.Registry, tokenizers *tokenizer.Registry, summarizer memory.Summarizer) ([]memory.Memory, error) {
	mems := make([]memory.Memory, 0, len(c.Memories))

	for _, spec := range c.Memories {
		opts := []memory.Option{
			memory.WithName(spec.Name),
			memory.WithModel(spec.Model),
			memory.WithTokenizers(tokenizers),
		}

		if spec.MaxTokens != 0 {
			opts = append(opts, memory.WithMaxTokens(spec.MaxTokens))
		}

		if spec.Summarize && summarizer != nil {
			opts = append(opts, memory.WithSummarizer(summarizer))
		}

		switch spec.Type {
		case MemoryBuffer:
			opts = append(opts, buffer.WithWindowSize(spec.WindowSize))
			mems = append(mems, buffer.NewMemory(opts...))
		case MemorySQL:
			opts = append(opts, sqlmemory.WithRegistry(reg), sqlmemory.WithConnection(spec.Connection))
			if len(spec.Table) > 0 {
				opts = append(opts, sqlmemory.WithTable(spec.Table))
			}
			m, err := sqlmemory.NewMemory(opts...)
			if err != nil {
				return nil, err
			}
			mems = append(mems, m)
		default:
			return nil, fmt.Errorf("%w: memory %q has unknown type %q", ErrInvalid, spec.Name, spec.Type)
		}
	}

	return mems, nil
}

// BuildGenerator returns the provider client named by c.Generator.
func BuildGenerator(c *Config) (generator.Generator, error) {
	opts := []generator.Option{
		generator.WithApiKey(c.APIKey),
		generator.WithModel(c.Model),
	}

	switch c.Generator {
	case GeneratorOpenAI:
		return openai.NewGenerator(opts...), nil
	case GeneratorAnthropic:
		return anthropic.NewGenerator(opts...), nil
	case GeneratorGoogle:
		return google.NewGenerator(opts...), nil
	}

	return nil, fmt.Errorf("%w: unknown generator %q", ErrInvalid, c.Generator)
}
