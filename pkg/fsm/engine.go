package fsm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/entityfsm/pkg/logger"
)

// Engine validates transition requests for one FSM type and fires the
// surrounding events. It holds no lock around a transition: the host is
// expected to serialize work on an entity, as a single update loop does.
type Engine[E comparable, S State] struct {
	table      *Table[S]
	policy     Policy[S]
	store      Store[E, S]
	overrides  Overrides[E, S]
	dispatcher Dispatcher[E, S]
	emit       emitter[E, S]
	log        *slog.Logger

	suppressInitial bool
	maxDepth        int
}

// New creates an engine. table, policy, store and dispatcher are required.
func New[E comparable, S State](table *Table[S], policy Policy[S], store Store[E, S], dispatcher Dispatcher[E, S], opts ...Option[E, S]) (*Engine[E, S], error) {
	switch {
	case table == nil:
		return nil, ErrNilTable
	case policy == nil:
		return nil, ErrNilPolicy
	case store == nil:
		return nil, ErrNilStore
	case dispatcher == nil:
		return nil, ErrNilDispatcher
	}

	e := &Engine[E, S]{
		table:      table,
		policy:     policy,
		store:      store,
		dispatcher: dispatcher,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.emit = emitter[E, S]{table: table, out: dispatcher}
	e.log = e.log.With(logger.Component("fsm"), logger.Machine(table.Machine()))
	return e, nil
}

// MustNew is like New but panics on invalid arguments.
func MustNew[E comparable, S State](table *Table[S], policy Policy[S], store Store[E, S], dispatcher Dispatcher[E, S], opts ...Option[E, S]) *Engine[E, S] {
	e, err := New(table, policy, store, dispatcher, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create fsm engine: %v", err))
	}
	return e
}

// Table returns the variant table of the engine.
func (e *Engine[E, S]) Table() *Table[S] { return e.table }

// RequestTransition asks for entity to move to next.
//
// There is no result: a request for an entity without a value, or one the
// override/policy denies, is dropped without any event or mutation. Callers
// observe success through the fired events or by reading the store.
//
// On acceptance the order is fixed: Exit(from), Transition(from, next), store
// write, Enter(next), each as the generic event followed by the
// variant-specific one. Transition handlers still read the old value.
// Requesting the current value runs the full sequence.
//
// Handlers may call RequestTransition again with the ctx they receive. Depth
// is unbounded unless WithMaxDepth is set; cycles are the caller's concern.
func (e *Engine[E, S]) RequestTransition(ctx context.Context, entity E, next S) {
	ctx, depth := nestDepth(ctx)
	log := e.log.With(logger.Entity(entity), logger.To(next.Name()))

	if e.maxDepth > 0 && depth > e.maxDepth {
		log.WarnContext(ctx, "transition request dropped: depth limit reached", logger.Depth(depth))
		return
	}

	from, ok, err := e.store.State(ctx, entity)
	if err != nil {
		log.ErrorContext(ctx, "failed to read state", logger.Error(err))
		return
	}
	if !ok {
		log.DebugContext(ctx, "transition request ignored: entity has no state")
		return
	}
	log = log.With(logger.From(from.Name()))

	if !e.table.Has(from) || !e.table.Has(next) {
		log.DebugContext(ctx, "transition request ignored: undeclared variant")
		return
	}

	if !e.allowed(ctx, entity, from, next) {
		log.DebugContext(ctx, "transition denied")
		return
	}

	e.emit.exit(ctx, entity, from)
	e.emit.transition(ctx, entity, from, next)

	if err := e.store.SetState(ctx, entity, next); err != nil {
		log.ErrorContext(ctx, "failed to write state, enter events skipped", logger.Error(err))
		return
	}

	e.emit.enter(ctx, entity, next)
	log.DebugContext(ctx, "transition applied")
}

// AttachInitial fires the Enter events for a value the host has just bound to
// entity. It never validates and never writes to the store. Nothing fires
// when WithSuppressInitialEnter is set.
//
// If the entity is assembled over several steps, Enter handlers may run
// before the remaining attributes exist. Suppress initial enters for such FSM
// types, or attach the value last.
func (e *Engine[E, S]) AttachInitial(ctx context.Context, entity E, initial S) {
	if e.suppressInitial {
		return
	}
	if !e.table.Has(initial) {
		e.log.DebugContext(ctx, "initial enter ignored: undeclared variant",
			logger.Entity(entity), logger.State(initial.Name()))
		return
	}
	ctx, _ = nestDepth(ctx)
	e.emit.enter(ctx, entity, initial)
}

// Attach binds initial to entity and reports the attachment. An entity that
// already holds a value has it replaced in place without any event, since that
// is neither an attachment nor a transition.
func (e *Engine[E, S]) Attach(ctx context.Context, entity E, initial S) error {
	if !e.table.Has(initial) {
		return fmt.Errorf("%w: %s", ErrUnknownVariant, initial.Name())
	}

	_, exists, err := e.store.State(ctx, entity)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	if err := e.store.SetState(ctx, entity, initial); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if exists {
		return nil
	}

	e.AttachInitial(ctx, entity, initial)
	return nil
}

// CanTransition reports whether RequestTransition(entity, next) would be
// accepted right now. Nothing fires.
func (e *Engine[E, S]) CanTransition(ctx context.Context, entity E, next S) bool {
	from, ok, err := e.store.State(ctx, entity)
	if err != nil || !ok {
		return false
	}
	if !e.table.Has(from) || !e.table.Has(next) {
		return false
	}
	return e.allowed(ctx, entity, from, next)
}

// Current returns the value entity holds. Store errors read as absent.
func (e *Engine[E, S]) Current(ctx context.Context, entity E) (S, bool) {
	v, ok, err := e.store.State(ctx, entity)
	if err != nil {
		e.log.ErrorContext(ctx, "failed to read state", logger.Entity(entity), logger.Error(err))
		var zero S
		return zero, false
	}
	return v, ok
}

func (e *Engine[E, S]) allowed(ctx context.Context, entity E, from, to S) bool {
	var o *Override[S]
	if e.overrides != nil {
		if found, ok := e.overrides.Override(ctx, entity); ok {
			o = found
		}
	}
	return Resolve(ctx, o, e.policy, Reader[E, S](e.store), entity, from, to)
}

type depthKey struct{}

// nestDepth returns a context one level deeper than ctx and the new depth.
func nestDepth(ctx context.Context) (context.Context, int) {
	d, _ := ctx.Value(depthKey{}).(int)
	d++
	return context.WithValue(ctx, depthKey{}, d), d
}
