package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/chainguard-dev/clog"
)

var cli struct {
	Serve  serveCmd  `cmd:"" help:"Serve memories and the agent over HTTP."`
	Ask    askCmd    `cmd:"" help:"Run one agent turn and print the reply."`
	Memory memoryCmd `cmd:"" help:"Inspect or clear a memory."`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	handler := slog.NewJSONHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))
	ctx = clog.WithLogger(ctx, clog.New(handler))

	kctx := kong.Parse(
		&cli,
		kong.Name("agentmem"),
		kong.Description("Bounded conversational memory for LLM agents. Configured through AGENTMEM_* variables."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	if err := kctx.Run(); err != nil {
		clog.FatalContextf(ctx, "agentmem: %v", err)
	}
}
