package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/w-h-a/agentmem/generator"
	"github.com/w-h-a/agentmem/generator/traced"
	"github.com/w-h-a/agentmem/invocation"
	"github.com/w-h-a/agentmem/memory"
	"github.com/w-h-a/agentmem/monitor"
	"github.com/w-h-a/agentmem/trace"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

var (
	ErrEmptyInput  = errors.New("agent: input is required")
	ErrUnknownTool = errors.New("agent: unknown tool")
)

// Service answers one turn at a time. Every turn runs as an agent frame of
// the invocation chain and is written back to memory.
type Service struct {
	options   Options
	memory    memory.Memory
	generator generator.Generator
	catalog   *ToolCatalog
	monitor   *monitor.Monitor
}

func (s *Service) Name() string {
	return s.options.Name
}

func (s *Service) Memory() memory.Memory {
	return s.memory
}

func (s *Service) Catalog() *ToolCatalog {
	return s.catalog
}

func (s *Service) Run(ctx context.Context, in *invocation.Input) (*invocation.Output, error) {
	tracker := s.monitor.Tracker()
	manager := tracker.Manager()

	ctx = manager.Ensure(ctx)

	owner := false
	if len(manager.TraceId(ctx)) == 0 {
		if traceId := in.String(invocation.KeyTraceId); len(traceId) > 0 {
			manager.SetTraceId(ctx, traceId)
		} else {
			manager.SetTraceId(ctx, manager.NewTraceId())
		}
		owner = true
	}

	sessionId := in.String(invocation.KeySessionId)
	if len(sessionId) == 0 {
		sessionId = manager.SessionId(ctx)
	} else {
		manager.SetSessionId(ctx, sessionId)
	}

	traceId := manager.TraceId(ctx)

	tracker.InitChain(ctx)
	tracker.InitTokenUsage(ctx)
	tracker.Push(ctx, trace.Entry{Source: s.options.Name, Type: trace.TypeAgent})

	defer func() {
		if owner {
			tracker.ClearChain(ctx)
			tracker.ClearTokenUsage(ctx)
		}
	}()

	s.monitor.TraceAgentInput(ctx, s.options.Name, in)

	start := time.Now()

	text, err := s.respond(ctx, sessionId, in.String(invocation.KeyInput))

	tracker.Pop(ctx)

	if err != nil {
		clog.FromContext(ctx).Error("agent run failed", "agent", s.options.Name, "trace_id", traceId, "error", err)
		return nil, err
	}

	out := invocation.NewOutput(map[string]any{
		invocation.KeyOutput:     text,
		invocation.KeyTokenUsage: map[string]int(tracker.TokenUsage(ctx)),
		invocation.KeyTraceId:    traceId,
	})

	if err := s.monitor.TraceAgentInvocation(ctx, s.options.Name, in, out, time.Since(start)); err != nil {
		clog.FromContext(ctx).Warn("failed to record agent invocation", "error", err, "agent", s.options.Name)
	}

	return out, nil
}

func (s *Service) respond(ctx context.Context, sessionId string, input string) (string, error) {
	if len(strings.TrimSpace(input)) == 0 {
		return "", ErrEmptyInput
	}

	if handled, output, err := s.handleCommand(ctx, sessionId, input); handled {
		if err != nil {
			return "", err
		}
		return output, nil
	}

	history, err := s.memory.Get(
		ctx,
		memory.WithGetSessionId(sessionId),
		memory.WithGetAgentId(s.options.Name),
		memory.WithGetTopK(s.options.HistoryTopK),
	)
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}

	prompt := s.buildPrompt(history, input)

	rsp, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.remember(ctx, sessionId,
		memory.Message{Type: memory.TypeHuman, Content: strings.TrimSpace(input), Source: "user"},
		memory.Message{Type: memory.TypeAI, Content: rsp.Text, Source: s.options.Name},
	)

	return rsp.Text, nil
}

// remember writes the turn back. A failed write is logged, the reply stands.
func (s *Service) remember(ctx context.Context, sessionId string, messages ...memory.Message) {
	err := s.memory.Add(
		ctx,
		messages,
		memory.WithAddSessionId(sessionId),
		memory.WithAddAgentId(s.options.Name),
	)
	if err != nil {
		clog.FromContext(ctx).Warn("failed to store turn", "error", err, "memory", s.memory.Name())
	}
}

func (s *Service) buildPrompt(history []memory.Message, input string) string {
	var sb bytes.Buffer
	sb.WriteString(s.options.SystemPrompt)

	if specs := s.catalog.ListSpecs(); len(specs) > 0 {
		sb.WriteString("\n\nAvailable tools:\n")
		for _, spec := range specs {
			sb.WriteString(spec.Render())
		}
		sb.WriteString("Invoke a tool by replying with the format `tool:<name> <json arguments>` when it improves the answer.\n")
	}

	if len(history) > 0 {
		sb.WriteString("\nConversation History:\n")
		for _, msg := range history {
			sb.WriteString(fmt.Sprintf("[%s]: %s\n", msg.Type, msg.Content))
		}
	}

	sb.WriteString("\nCurrent user message:\n")
	sb.WriteString(strings.TrimSpace(input))
	sb.WriteString("\n\nCompose the best possible assistant reply.\n")

	return sb.String()
}

func (s *Service) handleCommand(ctx context.Context, sessionId string, input string) (bool, string, error) {
	cmd, ok, err := parseCommand(input)
	if !ok {
		return false, "", nil
	}
	if err != nil {
		return true, "", err
	}

	th, spec, found := s.catalog.Get(cmd.name)
	if !found {
		return true, "", fmt.Errorf("%w: %s", ErrUnknownTool, cmd.name)
	}

	result, err := th.Invoke(ctx, toolhandler.ToolRequest{
		Arguments: cmd.args,
	})
	if err != nil {
		return true, "", err
	}

	metadata := map[string]any{"tool": spec.Name}
	for k, v := range result.Metadata {
		if len(strings.TrimSpace(k)) == 0 {
			continue
		}
		metadata[k] = v
	}

	s.remember(ctx, sessionId,
		memory.Message{Type: memory.TypeHuman, Content: strings.TrimSpace(input), Source: "user"},
		memory.Message{Type: memory.TypeTool, Content: strings.TrimSpace(result.Content), Source: spec.Name, Metadata: metadata},
	)

	return true, result.Content, nil
}

func New(opts ...Option) (*Service, error) {
	options := NewOptions(opts...)

	if options.Memory == nil {
		return nil, errors.New("agent: memory is required")
	}

	if options.Generator == nil {
		return nil, errors.New("agent: generator is required")
	}

	if len(strings.TrimSpace(options.SystemPrompt)) == 0 {
		options.SystemPrompt = defaultSystemPrompt
	}

	if options.HistoryTopK < 0 {
		options.HistoryTopK = 0
	}

	m := options.Monitor
	if m == nil {
		m = monitor.NewMonitor(nil)
	}

	catalog := NewToolCatalog(m)
	for _, th := range options.Tools {
		if err := catalog.Register(th); err != nil {
			return nil, fmt.Errorf("agent: %w", err)
		}
	}

	model := options.Model
	if len(model) == 0 {
		model = "llm"
	}

	gen := traced.NewGenerator(
		traced.WithGenerator(options.Generator),
		traced.WithMonitor(m),
		generator.WithModel(model),
	)

	return &Service{
		options:   options,
		memory:    options.Memory,
		generator: gen,
		catalog:   catalog,
		monitor:   m,
	}, nil
}
