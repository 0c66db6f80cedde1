package fsm_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrymomot/entityfsm/pkg/fsm"
)

type Life string

func (l Life) Name() string { return string(l) }

const (
	Alive Life = "alive"
	Dying Life = "dying"
	Dead  Life = "dead"
)

type Motion string

func (m Motion) Name() string { return string(m) }

const (
	Idling  Motion = "idling"
	Walking Motion = "walking"
	Flying  Motion = "flying"
)

// recorder logs every dispatched event and every store write into one
// ordered journal so tests can assert the exact interleaving.
type recorder[S fsm.State] struct {
	mu      sync.Mutex
	journal []string
	events  []fsm.Event[int, S]
}

func (r *recorder[S]) Dispatch(_ context.Context, ev fsm.Event[int, S]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.journal = append(r.journal, string(ev.ID))
}

func (r *recorder[S]) wrote(entity int, v S) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal = append(r.journal, fmt.Sprintf("set %d=%s", entity, v.Name()))
}

func (r *recorder[S]) entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.journal))
	copy(out, r.journal)
	return out
}

// recordingStore forwards to a MemoryStore and journals writes.
type recordingStore[S fsm.State] struct {
	*fsm.MemoryStore[int, S]
	rec      *recorder[S]
	failSet  bool
	failRead bool
}

func (s *recordingStore[S]) State(ctx context.Context, entity int) (S, bool, error) {
	if s.failRead {
		var zero S
		return zero, false, errors.New("read failed")
	}
	return s.MemoryStore.State(ctx, entity)
}

func (s *recordingStore[S]) SetState(ctx context.Context, entity int, v S) error {
	if s.failSet {
		return errors.New("write failed")
	}
	s.rec.wrote(entity, v)
	return s.MemoryStore.SetState(ctx, entity, v)
}

func newRecording[S fsm.State]() (*recorder[S], *recordingStore[S]) {
	rec := &recorder[S]{}
	return rec, &recordingStore[S]{MemoryStore: fsm.NewMemoryStore[int, S](), rec: rec}
}

func lifeTable() *fsm.Table[Life] {
	return fsm.MustNewTable("life", Alive, Dying, Dead)
}

func motionTable() *fsm.Table[Motion] {
	return fsm.MustNewTable("motion", Idling, Walking, Flying)
}

// lifePolicy allows alive -> dying, dying -> dead and every self pair.
func lifePolicy() fsm.Policy[Life] {
	return fsm.NewTablePolicy(
		fsm.WithTransitions[int](fsm.Edge(Alive, Dying), fsm.Edge(Dying, Dead)),
		fsm.WithSelfTransitions[int, Life](),
	)
}
