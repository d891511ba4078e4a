package trace

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
)

const (
	TypeAgent = "agent"
	TypeTool  = "tool"
	TypeLLM   = "llm"
)

// Entry is one frame of the invocation chain.
type Entry struct {
	Source string `json:"source"`
	Type   string `json:"type"`
}

// TokenUsage maps a usage category such as "prompt_tokens" to a count.
type TokenUsage map[string]int

// recordKey scopes a trace id to the unit that set it. Units that carry the
// same external trace id never share a record.
type recordKey struct {
	unit    *unit
	traceId string
}

type record struct {
	chain []Entry
	usage TokenUsage
}

// Tracker keeps the invocation chain and token usage of every live trace id,
// per execution unit.
// All operations resolve the trace id through the Manager and are silent
// no-ops when it is absent.
type Tracker struct {
	manager *Manager
	metrics *usageMetrics
	mtx     sync.Mutex
	records map[recordKey]*record
}

func (t *Tracker) Manager() *Manager {
	return t.manager
}

// InitChain creates an empty chain for the current trace id if none exists.
func (t *Tracker) InitChain(ctx context.Context) {
	t.withRecord(ctx, true, func(r *record) {
		if r.chain == nil {
			r.chain = []Entry{}
		}
	})
}

// Push appends entry to an initialized chain.
func (t *Tracker) Push(ctx context.Context, entry Entry) {
	pushed := false

	t.withRecord(ctx, false, func(r *record) {
		if r.chain == nil {
			return
		}
		r.chain = append(r.chain, entry)
		pushed = true
	})

	if pushed {
		t.metrics.recordCall(ctx, entry)
	}
}

// Pop removes the most recent entry. Popping an empty or missing chain does nothing.
func (t *Tracker) Pop(ctx context.Context) {
	t.withRecord(ctx, false, func(r *record) {
		if len(r.chain) == 0 {
			return
		}
		r.chain = r.chain[:len(r.chain)-1]
	})
}

// Chain returns a copy of the chain, oldest first.
func (t *Tracker) Chain(ctx context.Context) []Entry {
	var chain []Entry

	t.withRecord(ctx, false, func(r *record) {
		if r.chain == nil {
			return
		}
		chain = make([]Entry, len(r.chain))
		copy(chain, r.chain)
	})

	return chain
}

func (t *Tracker) ClearChain(ctx context.Context) {
	key, ok := t.key(ctx)
	if !ok {
		return
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	r, ok := t.records[key]
	if !ok {
		return
	}

	r.chain = nil

	t.dropIfEmpty(key, r)
}

// RenderChain formats the chain as "source: A, type: agent -> source: B, type: llm | ".
func (t *Tracker) RenderChain(ctx context.Context) string {
	chain := t.Chain(ctx)
	if len(chain) == 0 {
		return ""
	}

	parts := make([]string, 0, len(chain))
	for _, entry := range chain {
		parts = append(parts, fmt.Sprintf("source: %s, type: %s", entry.Source, entry.Type))
	}

	return strings.Join(parts, " -> ") + " | "
}

// InitTokenUsage creates an empty accumulator for the current trace id if none exists.
func (t *Tracker) InitTokenUsage(ctx context.Context) {
	t.withRecord(ctx, true, func(r *record) {
		if r.usage == nil {
			r.usage = TokenUsage{}
		}
	})
}

// AddTokenUsage sums delta into the accumulator.
func (t *Tracker) AddTokenUsage(ctx context.Context, delta TokenUsage) {
	added := false

	t.withRecord(ctx, false, func(r *record) {
		if r.usage == nil {
			return
		}
		for k, v := range delta {
			r.usage[k] += v
		}
		added = true
	})

	if added {
		t.metrics.recordTokens(ctx, delta)
	}
}

// TokenUsage returns a copy of the accumulator, or nil.
func (t *Tracker) TokenUsage(ctx context.Context) TokenUsage {
	var usage TokenUsage

	t.withRecord(ctx, false, func(r *record) {
		if r.usage == nil {
			return
		}
		usage = maps.Clone(r.usage)
	})

	return usage
}

// ClearTokenUsage drops the accumulator and also unsets the unit's trace id.
// Clear the chain first if both are being released.
func (t *Tracker) ClearTokenUsage(ctx context.Context) {
	key, ok := t.key(ctx)
	if !ok {
		return
	}

	t.mtx.Lock()
	if r, ok := t.records[key]; ok {
		r.usage = nil
		t.dropIfEmpty(key, r)
	}
	t.mtx.Unlock()

	t.manager.SetTraceId(ctx, "")
}

func (t *Tracker) key(ctx context.Context) (recordKey, bool) {
	u := t.manager.unitOf(ctx)
	if u == nil {
		return recordKey{}, false
	}

	traceId := t.manager.TraceId(ctx)
	if len(traceId) == 0 {
		return recordKey{}, false
	}

	return recordKey{unit: u, traceId: traceId}, true
}

func (t *Tracker) withRecord(ctx context.Context, create bool, fn func(*record)) {
	key, ok := t.key(ctx)
	if !ok {
		return
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	r, ok := t.records[key]
	if !ok {
		if !create {
			return
		}
		r = &record{}
		t.records[key] = r
	}

	fn(r)
}

func (t *Tracker) dropIfEmpty(key recordKey, r *record) {
	if r.chain == nil && r.usage == nil {
		delete(t.records, key)
	}
}

func NewTracker(manager *Manager) *Tracker {
	if manager == nil {
		manager = NewManager()
	}

	return &Tracker{
		manager: manager,
		metrics: newUsageMetrics(manager.options.MeterName),
		records: map[recordKey]*record{},
	}
}
