package trace

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type unitKey struct{}

// unit is the slot Begin installs. It holds at most one Context.
type unit struct {
	mtx     sync.Mutex
	current *Context
}

// Manager resolves the trace Context of an execution unit. One Manager is
// built by the composition root and handed to every collaborator.
type Manager struct {
	options Options
}

// Begin starts a new execution unit. Everything derived from the returned
// context shares one trace Context.
func (m *Manager) Begin(ctx context.Context) context.Context {
	return context.WithValue(ctx, unitKey{}, &unit{})
}

// Ensure returns ctx unchanged when it already carries a unit and begins a
// new one otherwise.
func (m *Manager) Ensure(ctx context.Context) context.Context {
	if _, ok := ctx.Value(unitKey{}).(*unit); ok {
		return ctx
	}
	return m.Begin(ctx)
}

// Current returns the unit's Context, creating an empty one on first use.
// Outside of a unit it returns a detached empty Context, so every trace id
// lookup sees an absent id.
func (m *Manager) Current(ctx context.Context) *Context {
	u, ok := ctx.Value(unitKey{}).(*unit)
	if !ok {
		return &Context{}
	}

	u.mtx.Lock()
	defer u.mtx.Unlock()

	if u.current == nil {
		u.current = &Context{}
	}

	return u.current
}

// unitOf returns the slot installed by Begin, or nil outside of a unit.
func (m *Manager) unitOf(ctx context.Context) *unit {
	u, _ := ctx.Value(unitKey{}).(*unit)
	return u
}

// Reset drops the unit's Context.
func (m *Manager) Reset(ctx context.Context) {
	u, ok := ctx.Value(unitKey{}).(*unit)
	if !ok {
		return
	}

	u.mtx.Lock()
	defer u.mtx.Unlock()

	u.current = nil
}

func (m *Manager) SessionId(ctx context.Context) string {
	return m.Current(ctx).SessionId()
}

func (m *Manager) TraceId(ctx context.Context) string {
	return m.Current(ctx).TraceId()
}

func (m *Manager) SpanId(ctx context.Context) string {
	return m.Current(ctx).SpanId()
}

func (m *Manager) SetSessionId(ctx context.Context, id string) {
	m.Current(ctx).setSessionId(id)
}

func (m *Manager) SetTraceId(ctx context.Context, id string) {
	m.Current(ctx).setTraceId(id)
}

func (m *Manager) SetSpanId(ctx context.Context, id string) {
	m.Current(ctx).setSpanId(id)
}

// NewTraceId returns a fresh trace id from the configured generator.
func (m *Manager) NewTraceId() string {
	return m.options.IdGenerator()
}

func NewManager(opts ...Option) *Manager {
	return &Manager{
		options: NewOptions(opts...),
	}
}

func defaultIdGenerator() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
