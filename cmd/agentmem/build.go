package main

import (
	"context"
	"errors"

	"github.com/chainguard-dev/clog"
	agent "github.com/w-h-a/agentmem"
	"github.com/w-h-a/agentmem/config"
	"github.com/w-h-a/agentmem/generator"
	"github.com/w-h-a/agentmem/generator/traced"
	"github.com/w-h-a/agentmem/internal/service/memories"
	"github.com/w-h-a/agentmem/memory"
	"github.com/w-h-a/agentmem/monitor"
	"github.com/w-h-a/agentmem/summarizer"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
	"github.com/w-h-a/agentmem/tool_handler/clock"
	"github.com/w-h-a/agentmem/tool_handler/echo"
	"github.com/w-h-a/agentmem/tool_handler/utcp"
	"github.com/w-h-a/agentmem/trace"
)

type deps struct {
	monitor  *monitor.Monitor
	memories []memory.Memory
	close    func() error
}

// buildMemories wires everything memory needs. gen may be nil, in which case
// no memory summarizes.
func buildMemories(cfg *config.Config, gen generator.Generator) (*deps, error) {
	comps, err := config.LoadComponents(cfg.Components)
	if err != nil {
		return nil, err
	}

	reg, err := config.BuildRegistry(comps)
	if err != nil {
		return nil, err
	}

	tokenizers, err := config.BuildTokenizers(cfg.TokenCacheSize)
	if err != nil {
		_ = reg.Close()
		return nil, err
	}

	closeAll := func() error {
		return errors.Join(tokenizers.Close(), reg.Close())
	}

	tracker := trace.NewTracker(trace.NewManager())

	m := monitor.NewMonitor(
		tracker,
		monitor.WithDir(cfg.MonitorDir),
		monitor.WithActivate(cfg.MonitorActivate),
		monitor.WithLogActivate(cfg.MonitorLogActivate),
	)

	var sum memory.Summarizer
	if gen != nil {
		sum = summarizer.NewSummarizer(
			summarizer.WithGenerator(traced.NewGenerator(
				traced.WithGenerator(gen),
				traced.WithMonitor(m),
				generator.WithModel(cfg.Model),
			)),
		)
	}

	mems, err := config.BuildMemories(comps, reg, tokenizers, sum)
	if err != nil {
		_ = closeAll()
		return nil, err
	}

	return &deps{
		monitor:  m,
		memories: mems,
		close:    closeAll,
	}, nil
}

func buildADK(ctx context.Context) (*agent.ADK, *config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	gen, err := config.BuildGenerator(cfg)
	if err != nil {
		return nil, nil, err
	}

	d, err := buildMemories(cfg, gen)
	if err != nil {
		return nil, nil, err
	}

	tools := []toolhandler.ToolHandler{
		echo.NewToolHandler(),
		clock.NewToolHandler(),
	}

	if len(cfg.ToolProviders) > 0 {
		discovered, err := utcp.Discover(ctx, cfg.ToolProviders, cfg.ToolQuery, cfg.ToolLimit)
		if err != nil {
			clog.FromContext(ctx).Warn("tool discovery failed", "error", err)
		} else {
			tools = append(tools, discovered...)
		}
	}

	adk, err := agent.New(
		agent.WithName(cfg.AgentName),
		agent.WithModel(cfg.Model),
		agent.WithSystemPrompt(cfg.SystemPrompt),
		agent.WithHistoryTopK(cfg.HistoryTopK),
		agent.WithAgentMemory(cfg.AgentMemory),
		agent.WithMemories(d.memories...),
		agent.WithGenerator(gen),
		agent.WithTools(tools...),
		agent.WithMonitor(d.monitor),
		agent.WithCloser(d.close),
	)
	if err != nil {
		_ = d.close()
		return nil, nil, err
	}

	return adk, cfg, nil
}

func buildMemoryService(ctx context.Context) (*memories.Service, func() error, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	d, err := buildMemories(cfg, nil)
	if err != nil {
		return nil, nil, err
	}

	svc, err := memories.New(d.memories...)
	if err != nil {
		_ = d.close()
		return nil, nil, err
	}

	return svc, d.close, nil
}
