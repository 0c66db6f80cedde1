package fsm

import "context"

// Event is one firing on a single channel.
//
// Generic events carry the value(s) as data: State for enter/exit, From and To
// for transitions. Variant-specific events carry nothing beyond their ID and
// target entity; their value fields are left zero because the ID already
// names the variant (or ordered pair).
type Event[E comparable, S State] struct {
	ID       EventID
	Phase    Phase
	Specific bool
	Entity   E

	State S
	From  S
	To    S
}

// Dispatcher is the host's event-dispatch primitive. Dispatch must invoke the
// handlers of ev.ID synchronously before returning.
type Dispatcher[E comparable, S State] interface {
	Dispatch(ctx context.Context, ev Event[E, S])
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc[E comparable, S State] func(ctx context.Context, ev Event[E, S])

func (f DispatcherFunc[E, S]) Dispatch(ctx context.Context, ev Event[E, S]) {
	f(ctx, ev)
}

// Tee forwards every event to each dispatcher in argument order.
func Tee[E comparable, S State](dispatchers ...Dispatcher[E, S]) Dispatcher[E, S] {
	list := make([]Dispatcher[E, S], 0, len(dispatchers))
	for _, d := range dispatchers {
		if d != nil {
			list = append(list, d)
		}
	}
	return DispatcherFunc[E, S](func(ctx context.Context, ev Event[E, S]) {
		for _, d := range list {
			d.Dispatch(ctx, ev)
		}
	})
}

// emitter builds the generic/specific event pairs of one table.
type emitter[E comparable, S State] struct {
	table *Table[S]
	out   Dispatcher[E, S]
}

func (em emitter[E, S]) enter(ctx context.Context, entity E, v S) {
	id, _ := em.table.EnterID(v)
	em.out.Dispatch(ctx, Event[E, S]{ID: em.table.genericEnter, Phase: PhaseEnter, Entity: entity, State: v})
	em.out.Dispatch(ctx, Event[E, S]{ID: id, Phase: PhaseEnter, Specific: true, Entity: entity})
}

func (em emitter[E, S]) exit(ctx context.Context, entity E, v S) {
	id, _ := em.table.ExitID(v)
	em.out.Dispatch(ctx, Event[E, S]{ID: em.table.genericExit, Phase: PhaseExit, Entity: entity, State: v})
	em.out.Dispatch(ctx, Event[E, S]{ID: id, Phase: PhaseExit, Specific: true, Entity: entity})
}

func (em emitter[E, S]) transition(ctx context.Context, entity E, from, to S) {
	id, _ := em.table.TransitionID(from, to)
	em.out.Dispatch(ctx, Event[E, S]{ID: em.table.genericTransition, Phase: PhaseTransition, Entity: entity, From: from, To: to})
	em.out.Dispatch(ctx, Event[E, S]{ID: id, Phase: PhaseTransition, Specific: true, Entity: entity})
}
