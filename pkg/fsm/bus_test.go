package fsm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/entityfsm/pkg/fsm"
)

func TestBus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("routes specific channels to their handlers only", func(t *testing.T) {
		t.Parallel()
		table := motionTable()
		bus := fsm.NewBus[int](table)
		store := fsm.NewMemoryStore[int, Motion]()
		e := fsm.MustNew(table, fsm.Policy[Motion](fsm.AllowAllPolicy[Motion]{}), fsm.Store[int, Motion](store), fsm.Dispatcher[int, Motion](bus))

		var got []string
		bus.OnExit(Idling, func(_ context.Context, entity int) { got = append(got, "exit idling") })
		bus.OnExit(Walking, func(_ context.Context, entity int) { got = append(got, "exit walking") })
		bus.OnTransition(Idling, Flying, func(_ context.Context, entity int) { got = append(got, "idling->flying") })
		bus.OnTransition(Flying, Idling, func(_ context.Context, entity int) { got = append(got, "flying->idling") })
		bus.OnTransition(Idling, Idling, func(_ context.Context, entity int) { got = append(got, "idling->idling") })
		bus.OnEnter(Flying, func(_ context.Context, entity int) { got = append(got, "enter flying") })
		bus.OnEnter(Walking, func(_ context.Context, entity int) { got = append(got, "enter walking") })

		_ = store.SetState(ctx, 1, Idling)
		e.RequestTransition(ctx, 1, Flying)

		assert.Equal(t, []string{"exit idling", "idling->flying", "enter flying"}, got)
	})

	t.Run("generic handlers receive values", func(t *testing.T) {
		t.Parallel()
		table := motionTable()
		bus := fsm.NewBus[int](table)
		store := fsm.NewMemoryStore[int, Motion]()
		e := fsm.MustNew(table, fsm.Policy[Motion](fsm.AllowAllPolicy[Motion]{}), fsm.Store[int, Motion](store), fsm.Dispatcher[int, Motion](bus))

		var exited, entered Motion
		var pair fsm.Pair[Motion]
		var entity int
		bus.OnAnyExit(func(_ context.Context, id int, s Motion) { exited = s })
		bus.OnAnyTransition(func(_ context.Context, id int, from, to Motion) { pair = fsm.Edge(from, to) })
		bus.OnAnyEnter(func(_ context.Context, id int, s Motion) { entered, entity = s, id })

		_ = store.SetState(ctx, 4, Walking)
		e.RequestTransition(ctx, 4, Idling)

		assert.Equal(t, Walking, exited)
		assert.Equal(t, fsm.Edge(Walking, Idling), pair)
		assert.Equal(t, Idling, entered)
		assert.Equal(t, 4, entity)
	})

	t.Run("handlers of one channel run in registration order", func(t *testing.T) {
		t.Parallel()
		table := motionTable()
		bus := fsm.NewBus[int](table)

		var order []int
		for i := range 3 {
			bus.OnEnter(Idling, func(context.Context, int) { order = append(order, i) })
		}
		id, _ := table.EnterID(Idling)
		bus.Dispatch(ctx, fsm.Event[int, Motion]{ID: id, Specific: true, Entity: 1})

		assert.Equal(t, []int{0, 1, 2}, order)
		assert.Equal(t, 3, bus.Handlers(id))
	})

	t.Run("handler registered during dispatch runs next time", func(t *testing.T) {
		t.Parallel()
		table := motionTable()
		bus := fsm.NewBus[int](table)
		id, _ := table.EnterID(Idling)

		calls := 0
		bus.OnEnter(Idling, func(context.Context, int) {
			bus.OnEnter(Idling, func(context.Context, int) { calls++ })
		})

		bus.Dispatch(ctx, fsm.Event[int, Motion]{ID: id})
		assert.Equal(t, 0, calls)
		bus.Dispatch(ctx, fsm.Event[int, Motion]{ID: id})
		assert.Equal(t, 1, calls)
	})

	t.Run("ignores unknown variants and nil handlers", func(t *testing.T) {
		t.Parallel()
		table := motionTable()
		bus := fsm.NewBus[int](table)

		bus.OnEnter(Motion("swimming"), func(context.Context, int) {})
		bus.OnExit(Idling, nil)
		bus.On("", func(context.Context, fsm.Event[int, Motion]) {})
		bus.OnAnyEnter(nil)

		for _, id := range table.IDs() {
			assert.Zero(t, bus.Handlers(id))
		}
	})
}

func TestTee(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var got []string
	first := fsm.DispatcherFunc[int, Motion](func(_ context.Context, ev fsm.Event[int, Motion]) {
		got = append(got, "first "+string(ev.ID))
	})
	second := fsm.DispatcherFunc[int, Motion](func(_ context.Context, ev fsm.Event[int, Motion]) {
		got = append(got, "second "+string(ev.ID))
	})

	d := fsm.Tee[int, Motion](first, nil, second)
	d.Dispatch(ctx, fsm.Event[int, Motion]{ID: "a"})
	d.Dispatch(ctx, fsm.Event[int, Motion]{ID: "b"})

	assert.Equal(t, []string{"first a", "second a", "first b", "second b"}, got)
}
