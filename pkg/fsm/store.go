package fsm

import (
	"context"
	"sync"
)

// Reader is the read-only view of the host store. Policies receive it to make
// context-aware decisions; they must not mutate anything through it.
type Reader[E comparable, S State] interface {
	// State returns the current value of entity. ok is false when the entity
	// carries no value of this FSM type.
	State(ctx context.Context, entity E) (value S, ok bool, err error)
}

// Store holds at most one value of one FSM type per entity.
type Store[E comparable, S State] interface {
	Reader[E, S]
	SetState(ctx context.Context, entity E, value S) error
}

// MemoryStore is an in-memory Store safe for concurrent use.
type MemoryStore[E comparable, S State] struct {
	values map[E]S
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore[E comparable, S State]() *MemoryStore[E, S] {
	return &MemoryStore[E, S]{
		values: make(map[E]S),
	}
}

func (m *MemoryStore[E, S]) State(_ context.Context, entity E) (S, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[entity]
	return v, ok, nil
}

func (m *MemoryStore[E, S]) SetState(_ context.Context, entity E, value S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[entity] = value
	return nil
}

// Remove detaches entity's value. Removing an absent entity is a no-op.
func (m *MemoryStore[E, S]) Remove(entity E) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, entity)
}

// Len returns the number of entities holding a value.
func (m *MemoryStore[E, S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
