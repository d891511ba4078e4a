package traced

import (
	"context"

	"github.com/w-h-a/agentmem/generator"
	"github.com/w-h-a/agentmem/monitor"
)

type generatorKey struct{}

// WithGenerator sets the generator being traced.
func WithGenerator(g generator.Generator) generator.Option {
	return func(o *generator.Options) {
		o.Context = context.WithValue(o.Context, generatorKey{}, g)
	}
}

func GeneratorFrom(ctx context.Context) (generator.Generator, bool) {
	g, ok := ctx.Value(generatorKey{}).(generator.Generator)
	return g, ok
}

type monitorKey struct{}

func WithMonitor(m *monitor.Monitor) generator.Option {
	return func(o *generator.Options) {
		o.Context = context.WithValue(o.Context, monitorKey{}, m)
	}
}

func MonitorFrom(ctx context.Context) (*monitor.Monitor, bool) {
	m, ok := ctx.Value(monitorKey{}).(*monitor.Monitor)
	return m, ok
}
