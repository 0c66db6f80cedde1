package eventstream

import (
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/entityfsm/pkg/fsm"
)

// Subscriber receives a copy of the events fired by the engine.
type Subscriber[E comparable, S fsm.State] struct {
	id      string
	ch      chan fsm.Event[E, S]
	filter  map[fsm.EventID]struct{}
	dropped atomic.Uint64
	done    chan struct{}
	detach  func(id string)
	closed  bool
	mu      sync.RWMutex
}

func newSubscriber[E comparable, S fsm.State](id string, bufferSize int, ids []fsm.EventID) *Subscriber[E, S] {
	s := &Subscriber[E, S]{
		id: id,
		ch:   make(chan fsm.Event[E, S], bufferSize),
		done: make(chan struct{}),
	}
	if len(ids) > 0 {
		s.filter = make(map[fsm.EventID]struct{}, len(ids))
		for _, id := range ids {
			s.filter[id] = struct{}{}
		}
	}
	return s
}

// ID returns the unique subscriber id.
func (s *Subscriber[E, S]) ID() string { return s.id }

// Events returns the receive channel. It is closed when the subscriber or
// the stream is closed, or when the subscription context is cancelled.
func (s *Subscriber[E, S]) Events() <-chan fsm.Event[E, S] { return s.ch }

// Dropped reports how many events were lost because the buffer was full.
func (s *Subscriber[E, S]) Dropped() uint64 { return s.dropped.Load() }

// Close removes the subscriber from its stream and closes the channel.
// Close is idempotent.
func (s *Subscriber[E, S]) Close() error {
	if s.detach != nil {
		s.detach(s.id)
	}
	s.close()
	return nil
}

func (s *Subscriber[E, S]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.ch)
		close(s.done)
		s.closed = true
	}
}

func (s *Subscriber[E, S]) wants(id fsm.EventID) bool {
	if s.filter == nil {
		return true
	}
	_, ok := s.filter[id]
	return ok
}

// send never blocks. It returns false when the event was dropped.
func (s *Subscriber[E, S]) send(ev fsm.Event[E, S]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}
