package buffer

import (
	"context"
	"sync"

	"github.com/w-h-a/agentmem/memory"
)

type entry struct {
	sessionId string
	agentId   string
	message   memory.Message
}

type bufferMemory struct {
	options    memory.Options
	pruner     *memory.Pruner
	windowSize int
	entries    []entry
	mtx        sync.RWMutex
}

func (m *bufferMemory) Name() string {
	return m.options.Name
}

func (m *bufferMemory) Add(ctx context.Context, messages []memory.Message, opts ...memory.AddOption) error {
	if len(messages) == 0 {
		return nil
	}

	options := memory.NewAddOptions(opts...)

	m.mtx.Lock()
	defer m.mtx.Unlock()

	for _, msg := range messages {
		m.entries = append(m.entries, entry{
			sessionId: options.SessionId,
			agentId:   options.AgentId,
			message:   msg,
		})
	}

	if m.windowSize > 0 && len(m.entries) > m.windowSize {
		m.entries = append([]entry(nil), m.entries[len(m.entries)-m.windowSize:]...)
	}

	return nil
}

func (m *bufferMemory) Get(ctx context.Context, opts ...memory.GetOption) ([]memory.Message, error) {
	options := memory.NewGetOptions(opts...)

	m.mtx.RLock()

	var matched []memory.Message

	for _, e := range m.entries {
		if len(options.SessionId) > 0 && e.sessionId != options.SessionId {
			continue
		}
		if len(options.AgentId) > 0 && e.agentId != options.AgentId {
			continue
		}
		if len(options.Source) > 0 && e.message.Source != options.Source {
			continue
		}
		matched = append(matched, e.message)
	}

	m.mtx.RUnlock()

	if options.TopK > 0 && len(matched) > options.TopK {
		matched = matched[len(matched)-options.TopK:]
	}

	return m.Prune(ctx, matched)
}

// Prune drops the oldest messages over budget. The buffer never summarizes.
func (m *bufferMemory) Prune(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	kept, _ := m.pruner.Truncate(messages)
	return kept, nil
}

// Delete removes entries matching every non-empty filter. With no filters it
// empties the buffer.
func (m *bufferMemory) Delete(ctx context.Context, opts ...memory.DeleteOption) error {
	options := memory.NewDeleteOptions(opts...)

	m.mtx.Lock()
	defer m.mtx.Unlock()

	kept := m.entries[:0]

	for _, e := range m.entries {
		sessionMatch := len(options.SessionId) == 0 || e.sessionId == options.SessionId
		agentMatch := len(options.AgentId) == 0 || e.agentId == options.AgentId
		if sessionMatch && agentMatch {
			continue
		}
		kept = append(kept, e)
	}

	clear(m.entries[len(kept):])
	m.entries = kept

	return nil
}

func NewMemory(opts ...memory.Option) memory.Memory {
	options := memory.NewOptions(opts...)

	m := &bufferMemory{
		options: options,
		pruner:  memory.NewPruner(options),
	}

	if n, ok := WindowSizeFrom(options.Context); ok {
		m.windowSize = n
	}

	return m
}
