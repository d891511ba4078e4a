package utcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	goutcp "github.com/universal-tool-calling-protocol/go-utcp"
	toolhandler "github.com/w-h-a/agentmem/tool_handler"
)

type providerConfig struct {
	Type    string            `json:"provider_type"`
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Method  string            `json:"http_method"`
	Headers map[string]string `json:"headers"`
}

type providersFile struct {
	Providers []providerConfig `json:"providers"`
}

func buildProviders(addrs []string) (providersFile, error) {
	var cfg providersFile

	for _, u := range addrs {
		parsed, err := url.Parse(u)
		if err != nil {
			return providersFile{}, fmt.Errorf("utcp: bad provider address %q: %w", u, err)
		}
		if len(parsed.Hostname()) == 0 {
			return providersFile{}, fmt.Errorf("utcp: provider address %q has no host", u)
		}

		cfg.Providers = append(cfg.Providers, providerConfig{
			Type:   "http",
			Name:   parsed.Hostname(),
			URL:    u,
			Method: "POST",
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
		})
	}

	return cfg, nil
}

// Discover registers the http providers at addrs and returns a handler for
// every tool matching query, up to limit.
func Discover(ctx context.Context, addrs []string, query string, limit int) ([]toolhandler.ToolHandler, error) {
	cfg, err := buildProviders(addrs)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "utcp_config_*.json")
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())

	if err := json.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return nil, err
	}
	f.Close()

	client, err := goutcp.NewUTCPClient(ctx, &goutcp.UtcpClientConfig{ProvidersFilePath: f.Name()}, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("utcp: client: %w", err)
	}

	remote, err := client.SearchTools(query, limit)
	if err != nil {
		return nil, fmt.Errorf("utcp: discovery failed: %w", err)
	}

	handlers := make([]toolhandler.ToolHandler, 0, len(remote))
	for _, tool := range remote {
		handlers = append(handlers, NewToolHandler(
			WithUtcpClient(client),
			WithToolName(tool.Name),
			WithToolSpec(toolhandler.ToolSpec{
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: tool.Inputs.Properties,
			}),
		))
	}

	return handlers, nil
}
