package sql

import (
	"context"

	"github.com/w-h-a/agentmem/connection"
	"github.com/w-h-a/agentmem/memory"
)

type registryKey struct{}

func WithRegistry(reg *connection.Registry) memory.Option {
	return func(o *memory.Options) {
		o.Context = context.WithValue(o.Context, registryKey{}, reg)
	}
}

func RegistryFrom(ctx context.Context) (*connection.Registry, bool) {
	reg, ok := ctx.Value(registryKey{}).(*connection.Registry)
	return reg, ok
}

type connectionNameKey struct{}

// WithConnection names the registry entry the memory reads and writes through.
func WithConnection(name string) memory.Option {
	return func(o *memory.Options) {
		o.Context = context.WithValue(o.Context, connectionNameKey{}, name)
	}
}

func ConnectionFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(connectionNameKey{}).(string)
	return name, ok
}

type tableKey struct{}

func WithTable(table string) memory.Option {
	return func(o *memory.Options) {
		o.Context = context.WithValue(o.Context, tableKey{}, table)
	}
}

func TableFrom(ctx context.Context) (string, bool) {
	table, ok := ctx.Value(tableKey{}).(string)
	return table, ok
}
