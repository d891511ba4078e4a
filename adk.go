package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	agentsvc "github.com/w-h-a/agentmem/internal/service/agent"
	"github.com/w-h-a/agentmem/internal/service/memories"
	"github.com/w-h-a/agentmem/invocation"
	"github.com/w-h-a/agentmem/memory"
	"github.com/w-h-a/agentmem/monitor"
	httpserver "github.com/w-h-a/agentmem/server/http"
	"github.com/w-h-a/agentmem/trace"
)

// ADK bundles an agent with the memories it can reach.
type ADK struct {
	options  Options
	agent    *agentsvc.Service
	memories *memories.Service
	monitor  *monitor.Monitor
}

func (a *ADK) Tracker() *trace.Tracker {
	return a.monitor.Tracker()
}

// Run executes one agent turn.
func (a *ADK) Run(ctx context.Context, in *invocation.Input) (*invocation.Output, error) {
	return a.agent.Run(ctx, in)
}

// Ask is Run for the common case of plain text in and out.
func (a *ADK) Ask(ctx context.Context, sessionId string, input string) (string, error) {
	out, err := a.agent.Run(ctx, invocation.NewInput(map[string]any{
		invocation.KeyInput:     input,
		invocation.KeySessionId: sessionId,
	}))
	if err != nil {
		return "", err
	}
	return out.String(invocation.KeyOutput), nil
}

func (a *ADK) ListMemories() []string {
	return a.memories.Names()
}

func (a *ADK) Messages(ctx context.Context, name string, opts ...memory.GetOption) ([]memory.Message, error) {
	return a.memories.Messages(ctx, name, opts...)
}

func (a *ADK) Forget(ctx context.Context, name string, opts ...memory.DeleteOption) error {
	return a.memories.Forget(ctx, name, opts...)
}

// Handler serves the memories and the agent over HTTP.
func (a *ADK) Handler(logger *slog.Logger) http.Handler {
	return httpserver.NewRouter(a.monitor.Tracker(), a.memories, a.agent, logger)
}

func (a *ADK) Close() error {
	var errs []error
	for i := len(a.options.Closers) - 1; i >= 0; i-- {
		if err := a.options.Closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func New(opts ...Option) (*ADK, error) {
	options := NewOptions(opts...)

	m := options.Monitor
	if m == nil {
		m = monitor.NewMonitor(nil)
	}

	mems, err := memories.New(options.Memories...)
	if err != nil {
		return nil, err
	}

	name := options.AgentMemory
	if len(name) == 0 {
		names := mems.Names()
		if len(names) != 1 {
			return nil, fmt.Errorf("agent: %d memories registered, choose one with WithAgentMemory", len(names))
		}
		name = names[0]
	}

	mem, err := mems.Get(name)
	if err != nil {
		return nil, err
	}

	svc, err := agentsvc.New(
		agentsvc.WithName(options.Name),
		agentsvc.WithModel(options.Model),
		agentsvc.WithSystemPrompt(options.SystemPrompt),
		agentsvc.WithHistoryTopK(options.HistoryTopK),
		agentsvc.WithMemory(mem),
		agentsvc.WithGenerator(options.Generator),
		agentsvc.WithTools(options.Tools...),
		agentsvc.WithMonitor(m),
	)
	if err != nil {
		return nil, err
	}

	return &ADK{
		options:  options,
		agent:    svc,
		memories: mems,
		monitor:  m,
	}, nil
}
