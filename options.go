package agent

import (
	"context"

	"github.com/w-h-a/agentmem/generator"
	"github.com/w-h-a/agentmem/memory"
	"github.com/w-h-a/agentmem/monitor"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

type Option func(*Options)

type Options struct {
	Name         string
	Model        string
	SystemPrompt string
	HistoryTopK  int
	// AgentMemory names the memory the agent reads and writes.
	AgentMemory string
	Memories    []memory.Memory
	Generator   generator.Generator
	Tools       []toolhandler.ToolHandler
	Monitor     *monitor.Monitor
	Closers     []func() error
	Context     context.Context
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

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

func WithHistoryTopK(k int) Option {
	return func(o *Options) {
		o.HistoryTopK = k
	}
}

func WithAgentMemory(name string) Option {
	return func(o *Options) {
		o.AgentMemory = name
	}
}

func WithMemories(mems ...memory.Memory) Option {
	return func(o *Options) {
		o.Memories = append(o.Memories, mems...)
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

// WithCloser registers a release hook run by Close, in reverse order.
func WithCloser(fn func() error) Option {
	return func(o *Options) {
		o.Closers = append(o.Closers, fn)
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Name:        "agent",
		HistoryTopK: 20,
		Context:     context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
