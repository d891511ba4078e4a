package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/w-h-a/agentmem/connection"
	"gopkg.in/yaml.v3"
)

const (
	MemoryBuffer = "buffer"
	MemorySQL    = "sql"
)

// Components declares the connections and memories a process serves.
type Components struct {
	Connections []ConnectionSpec `yaml:"connections"`
	Memories    []MemorySpec     `yaml:"memories"`
}

type ConnectionSpec struct {
	Name            string        `yaml:"name"`
	Dialect         string        `yaml:"dialect"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type MemorySpec struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Model      string `yaml:"model"`
	MaxTokens  int    `yaml:"max_tokens"`
	WindowSize int    `yaml:"window_size"`
	Connection string `yaml:"connection"`
	Table      string `yaml:"table"`
	Summarize  bool   `yaml:"summarize"`
}

// DefaultComponents serves one in-process memory named "default".
func DefaultComponents() *Components {
	return &Components{
		Memories: []MemorySpec{
			{Name: "default", Type: MemoryBuffer},
		},
	}
}

func (c *Components) Validate() error {
	var errs []error

	connections := map[string]bool{}
	for i, spec := range c.Connections {
		if len(strings.TrimSpace(spec.Name)) == 0 {
			errs = append(errs, fmt.Errorf("%w: connections[%d].name is required", ErrInvalid, i))
			continue
		}
		if connections[spec.Name] {
			errs = append(errs, fmt.Errorf("%w: connection %q declared twice", ErrInvalid, spec.Name))
		}
		connections[spec.Name] = true

		if !connection.Dialect(spec.Dialect).Valid() {
			errs = append(errs, fmt.Errorf("%w: connection %q has unknown dialect %q", ErrInvalid, spec.Name, spec.Dialect))
		}
		if len(spec.DSN) == 0 {
			errs = append(errs, fmt.Errorf("%w: connection %q has no dsn", ErrInvalid, spec.Name))
		}
	}

	memories := map[string]bool{}
	for i, spec := range c.Memories {
		if len(strings.TrimSpace(spec.Name)) == 0 {
			errs = append(errs, fmt.Errorf("%w: memories[%d].name is required", ErrInvalid, i))
			continue
		}
		if memories[spec.Name] {
			errs = append(errs, fmt.Errorf("%w: memory %q declared twice", ErrInvalid, spec.Name))
		}
		memories[spec.Name] = true

		switch spec.Type {
		case MemoryBuffer:
		case MemorySQL:
			if !connections[spec.Connection] {
				errs = append(errs, fmt.Errorf("%w: memory %q uses undeclared connection %q", ErrInvalid, spec.Name, spec.Connection))
			}
		default:
			errs = append(errs, fmt.Errorf("%w: memory %q has unknown type %q", ErrInvalid, spec.Name, spec.Type))
		}
	}

	return errors.Join(errs...)
}

func ParseComponents(data []byte) (*Components, error) {
	var c Components

	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse components: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadComponents reads path, or returns DefaultComponents when path is empty.
func LoadComponents(path string) (*Components, error) {
	if len(path) == 0 {
		return DefaultComponents(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read components: %w", err)
	}

	return ParseComponents(data)
}
