package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

var (
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config is the process configuration, read from AGENTMEM_* variables.
type Config struct {
	Address    string `env:"AGENTMEM_ADDRESS,default=:8080"`
	Components string `env:"AGENTMEM_COMPONENTS"`

	MonitorDir         string `env:"AGENTMEM_MONITOR_DIR,default=./monitor"`
	MonitorActivate    bool   `env:"AGENTMEM_MONITOR_ACTIVATE,default=false"`
	MonitorLogActivate bool   `env:"AGENTMEM_MONITOR_LOG_ACTIVATE,default=true"`

	Generator string `env:"AGENTMEM_GENERATOR,default=openai"`
	Model     string `env:"AGENTMEM_MODEL,default=gpt-4o-mini"`
	APIKey    string `env:"AGENTMEM_API_KEY"`

	AgentName    string `env:"AGENTMEM_AGENT_NAME,default=agent"`
	AgentMemory  string `env:"AGENTMEM_AGENT_MEMORY,default=default"`
	SystemPrompt string `env:"AGENTMEM_SYSTEM_PROMPT"`
	HistoryTopK  int    `env:"AGENTMEM_HISTORY_TOP_K,default=20"`

	ToolProviders []string `env:"AGENTMEM_UTCP_PROVIDERS"`
	ToolQuery     string   `env:"AGENTMEM_UTCP_QUERY"`
	ToolLimit     int      `env:"AGENTMEM_UTCP_LIMIT,default=20"`

	TokenCacheSize int64 `env:"AGENTMEM_TOKEN_CACHE_SIZE,default=10000"`
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if len(strings.TrimSpace(c.Address)) == 0 {
		errs = append(errs, fmt.Errorf("%w: AGENTMEM_ADDRESS is required", ErrInvalid))
	}

	switch c.Generator {
	case GeneratorOpenAI, GeneratorAnthropic, GeneratorGoogle:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown generator %q", ErrInvalid, c.Generator))
	}

	if len(strings.TrimSpace(c.AgentName)) == 0 {
		errs = append(errs, fmt.Errorf("%w: AGENTMEM_AGENT_NAME is required", ErrInvalid))
	}

	if c.HistoryTopK < 0 {
		errs = append(errs, fmt.Errorf("%w: AGENTMEM_HISTORY_TOP_K must not be negative", ErrInvalid))
	}

	if c.TokenCacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: AGENTMEM_TOKEN_CACHE_SIZE must not be negative", ErrInvalid))
	}

	return errors.Join(errs...)
}

func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
