package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/w-h-a/agentmem/invocation"
	"github.com/w-h-a/agentmem/memory"
	"github.com/w-h-a/agentmem/server"
	httpserver "github.com/w-h-a/agentmem/server/http"
	"golang.org/x/sync/errgroup"
)

type serveCmd struct {
	ShutdownTimeout time.Duration `help:"Grace period for in-flight requests." default:"10s"`
}

func (c *serveCmd) Run(ctx context.Context) error {
	adk, cfg, err := buildADK(ctx)
	if err != nil {
		return err
	}
	defer adk.Close()

	srv := httpserver.NewServer(
		server.WithName("agentmem"),
		server.WithAddress(cfg.Address),
		httpserver.WithHandler(adk.Handler(slog.Default())),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.ShutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}

type askCmd struct {
	Session string `help:"Session the turn belongs to." default:""`
	Input   string `arg:"" help:"User message, or tool:<name> <args>."`
}

func (c *askCmd) Run(ctx context.Context) error {
	adk, _, err := buildADK(ctx)
	if err != nil {
		return err
	}
	defer adk.Close()

	ctx = adk.Tracker().Manager().Begin(ctx)

	out, err := adk.Run(ctx, invocation.NewInput(map[string]any{
		invocation.KeyInput:     c.Input,
		invocation.KeySessionId: c.Session,
	}))
	if err != nil {
		return err
	}

	clog.FromContext(ctx).Info("agent replied",
		"trace_id", out.String(invocation.KeyTraceId),
		"token_usage", out.Get(invocation.KeyTokenUsage),
	)

	fmt.Println(out.String(invocation.KeyOutput))

	return nil
}

type memoryCmd struct {
	Get    memoryGetCmd    `cmd:"" help:"Print the messages a memory returns."`
	Delete memoryDeleteCmd `cmd:"" help:"Delete messages from a memory."`
}

type memoryGetCmd struct {
	Name    string `arg:"" help:"Memory name."`
	Session string `help:"Only messages of this session."`
	Agent   string `help:"Only messages of this agent."`
	Source  string `help:"Only messages from this source."`
	TopK    int    `help:"Keep only the most recent k messages." default:"0"`
}

func (c *memoryGetCmd) Run(ctx context.Context) error {
	svc, closeFn, err := buildMemoryService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	msgs, err := svc.Messages(
		ctx,
		c.Name,
		memory.WithGetSessionId(c.Session),
		memory.WithGetAgentId(c.Agent),
		memory.WithGetSource(c.Source),
		memory.WithGetTopK(c.TopK),
	)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, msg := range msgs {
		if err := enc.Encode(msg); err != nil {
			return err
		}
	}

	return nil
}

type memoryDeleteCmd struct {
	Name    string `arg:"" help:"Memory name."`
	Session string `help:"Only messages of this session."`
	Agent   string `help:"Only messages of this agent."`
	All     bool   `help:"Allow deleting every message when no filter is given."`
}

func (c *memoryDeleteCmd) Run(ctx context.Context) error {
	if len(c.Session) == 0 && len(c.Agent) == 0 && !c.All {
		return errors.New("refusing to delete every message without --all")
	}

	svc, closeFn, err := buildMemoryService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	return svc.Forget(
		ctx,
		c.Name,
		memory.WithDeleteSessionId(c.Session),
		memory.WithDeleteAgentId(c.Agent),
	)
}
