package agent

import (
	"context"

	"github.com/w-h-a/agentmem/generator"
	"github.com/w-h-a/agentmem/memory"
	"github.com/w-h-a/agentmem/monitor"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

const (
	defaultSystemPrompt = "You are a helpful assistant with a bounded conversational memory. Answer concisely and use the conversation history when it is relevant."
)

type Option func(*Options)

type Options struct {
	Name         string
	Model        string
	SystemPrompt string
	HistoryTopK  int
	Memory       memory.Memory
	Generator    generator.Generator
	Tools        []toolhandler.ToolHandler
	Monitor      *monitor.Monitor
	Context      context.Context
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithModel names the llm frames the agent's generator produces.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithHistoryTopK bounds how many stored messages are read per turn.
func WithHistoryTopK(k int) Option {
	return func(o *Options) {
		o.HistoryTopK = k
	}
}

func WithMemory(m memory.Memory) Option {
	return func(o *Options) {
		o.Memory = m
	}
}

func WithGenerator(g generator.Generator) Option {
	return func(o *Options) {
		o.Generator = g
	}
}

func WithTools(tools ...toolhandler.ToolHandler) Option {
	return func(o *Options) {
		o.Tools = append(o.Tools, tools...)
	}
}

func WithMonitor(m *monitor.Monitor) Option {
	return func(o *Options) {
		o.Monitor = m
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Name:         "agent",
		SystemPrompt: defaultSystemPrompt,
		HistoryTopK:  20,
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
