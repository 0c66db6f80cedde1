package fsm

import (
	"context"
	"sync"
)

// Handler receives events fired on one channel.
type Handler[E comparable, S State] func(ctx context.Context, ev Event[E, S])

// Bus is a synchronous in-process Dispatcher. Handlers of the same channel run
// in registration order. The handler list is copied before invocation, so
// handlers may register more handlers or request further transitions.
type Bus[E comparable, S State] struct {
	table    *Table[S]
	handlers map[EventID][]Handler[E, S]
	mu       sync.RWMutex
}

// NewBus creates a bus for the channels of table.
func NewBus[E comparable, S State](table *Table[S]) *Bus[E, S] {
	return &Bus[E, S]{
		table:    table,
		handlers: make(map[EventID][]Handler[E, S]),
	}
}

func (b *Bus[E, S]) Dispatch(ctx context.Context, ev Event[E, S]) {
	b.mu.RLock()
	list := b.handlers[ev.ID]
	handlers := make([]Handler[E, S], len(list))
	copy(handlers, list)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}

// On registers h on an arbitrary channel.
func (b *Bus[E, S]) On(id EventID, h Handler[E, S]) {
	if h == nil || id == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[id] = append(b.handlers[id], h)
}

// OnEnter observes entering v. Unknown variants are ignored.
func (b *Bus[E, S]) OnEnter(v S, fn func(ctx context.Context, entity E)) {
	id, ok := b.table.EnterID(v)
	if !ok || fn == nil {
		return
	}
	b.On(id, func(ctx context.Context, ev Event[E, S]) { fn(ctx, ev.Entity) })
}

// OnExit observes leaving v.
func (b *Bus[E, S]) OnExit(v S, fn func(ctx context.Context, entity E)) {
	id, ok := b.table.ExitID(v)
	if !ok || fn == nil {
		return
	}
	b.On(id, func(ctx context.Context, ev Event[E, S]) { fn(ctx, ev.Entity) })
}

// OnTransition observes exactly the from -> to transition.
func (b *Bus[E, S]) OnTransition(from, to S, fn func(ctx context.Context, entity E)) {
	id, ok := b.table.TransitionID(from, to)
	if !ok || fn == nil {
		return
	}
	b.On(id, func(ctx context.Context, ev Event[E, S]) { fn(ctx, ev.Entity) })
}

// OnAnyEnter observes every enter with the entered value.
func (b *Bus[E, S]) OnAnyEnter(fn func(ctx context.Context, entity E, state S)) {
	if fn == nil {
		return
	}
	b.On(b.table.GenericID(PhaseEnter), func(ctx context.Context, ev Event[E, S]) { fn(ctx, ev.Entity, ev.State) })
}

// OnAnyExit observes every exit with the value being left.
func (b *Bus[E, S]) OnAnyExit(fn func(ctx context.Context, entity E, state S)) {
	if fn == nil {
		return
	}
	b.On(b.table.GenericID(PhaseExit), func(ctx context.Context, ev Event[E, S]) { fn(ctx, ev.Entity, ev.State) })
}

// OnAnyTransition observes every transition with both values.
func (b *Bus[E, S]) OnAnyTransition(fn func(ctx context.Context, entity E, from, to S)) {
	if fn == nil {
		return
	}
	b.On(b.table.GenericID(PhaseTransition), func(ctx context.Context, ev Event[E, S]) { fn(ctx, ev.Entity, ev.From, ev.To) })
}

// Handlers returns the number of handlers registered on id.
func (b *Bus[E, S]) Handlers(id EventID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[id])
}
