package memories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/w-h-a/agentmem/memory"
)

var (
	ErrNotFound = errors.New("memories: memory not found")
	ErrExists   = errors.New("memories: memory already registered")
)

// Service keeps the named memories a process serves.
type Service struct {
	memories map[string]memory.Memory
	mtx      sync.RWMutex
}

func (s *Service) Register(m memory.Memory) error {
	if m == nil {
		return errors.New("memories: memory is nil")
	}

	name := strings.TrimSpace(m.Name())
	if len(name) == 0 {
		return errors.New("memories: memory name is required")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.memories[name]; ok {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}

	s.memories[name] = m

	return nil
}

func (s *Service) Names() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	names := make([]string, 0, len(s.memories))
	for name := range s.memories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) Get(name string) (memory.Memory, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	m, ok := s.memories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return m, nil
}

func (s *Service) Messages(ctx context.Context, name string, opts ...memory.GetOption) ([]memory.Message, error) {
	m, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	return m.Get(ctx, opts...)
}

func (s *Service) Append(ctx context.Context, name string, messages []memory.Message, opts ...memory.AddOption) error {
	m, err := s.Get(name)
	if err != nil {
		return err
	}

	return m.Add(ctx, messages, opts...)
}

// Forget deletes matching messages. With no filters it empties the memory.
func (s *Service) Forget(ctx context.Context, name string, opts ...memory.DeleteOption) error {
	m, err := s.Get(name)
	if err != nil {
		return err
	}

	options := memory.NewDeleteOptions(opts...)
	if len(options.SessionId) == 0 && len(options.AgentId) == 0 {
		clog.FromContext(ctx).Warn("deleting every message", "memory", name)
	}

	return m.Delete(ctx, opts...)
}

func New(mems ...memory.Memory) (*Service, error) {
	s := &Service{
		memories: map[string]memory.Memory{},
		mtx:      sync.RWMutex{},
	}

	for _, m := range mems {
		if err := s.Register(m); err != nil {
			return nil, err
		}
	}

	return s, nil
}
