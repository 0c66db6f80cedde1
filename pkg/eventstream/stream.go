package eventstream

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/entityfsm/pkg/fsm"
	"github.com/dmitrymomot/entityfsm/pkg/logger"
)

// Stream copies every dispatched event to its subscribers without blocking
// the transition pipeline. It implements fsm.Dispatcher; combine it with the
// synchronous bus through fsm.Tee.
type Stream[E comparable, S fsm.State] struct {
	subscribers map[string]*Subscriber[E, S]
	bufferSize  int
	log         *slog.Logger
	closed      bool
	mu          sync.RWMutex
	done        chan struct{}
}

// Option configures a Stream.
type Option[E comparable, S fsm.State] func(*Stream[E, S])

// WithBufferSize sets the per-subscriber channel capacity. Minimum 1.
func WithBufferSize[E comparable, S fsm.State](n int) Option[E, S] {
	return func(s *Stream[E, S]) { s.bufferSize = max(n, 1) }
}

// WithLogger sets the logger used to report dropped events.
func WithLogger[E comparable, S fsm.State](l *slog.Logger) Option[E, S] {
	return func(s *Stream[E, S]) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates an open stream with a buffer of 64 events per subscriber.
func New[E comparable, S fsm.State](opts ...Option[E, S]) *Stream[E, S] {
	s := &Stream[E, S]{
		subscribers: make(map[string]*Subscriber[E, S]),
		bufferSize:  64,
		log:         slog.Default(),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("eventstream"))
	return s
}

// Subscribe registers a subscriber for the given event ids, or for every
// event when ids is empty. Cancelling ctx unsubscribes and closes it.
// Subscribing to a closed stream returns an already-closed subscriber.
func (s *Stream[E, S]) Subscribe(ctx context.Context, ids ...fsm.EventID) *Subscriber[E, S] {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := newSubscriber[E, S](uuid.NewString(), s.bufferSize, ids)
	if s.closed {
		sub.close()
		return sub
	}
	sub.detach = func(id string) { s.remove(id) }
	s.subscribers[sub.id] = sub

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				s.Unsubscribe(sub.id)
			case <-sub.done:
			case <-s.done:
			}
		}()
	}

	return sub
}

// Unsubscribe removes and closes the subscriber with the given id.
func (s *Stream[E, S]) Unsubscribe(id string) {
	if sub, ok := s.remove(id); ok {
		sub.close()
	}
}

func (s *Stream[E, S]) remove(id string) (*Subscriber[E, S], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscribers[id]
	delete(s.subscribers, id)
	return sub, ok
}

// Dispatch implements fsm.Dispatcher. A subscriber whose buffer is full
// loses the event; it stays subscribed.
func (s *Stream[E, S]) Dispatch(ctx context.Context, ev fsm.Event[E, S]) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}
	for id, sub := range s.subscribers {
		if !sub.wants(ev.ID) {
			continue
		}
		if !sub.send(ev) {
			s.log.DebugContext(ctx, "event dropped for slow subscriber",
				logger.SubscriberID(id),
				logger.EventID(string(ev.ID)),
				logger.Entity(ev.Entity),
			)
		}
	}
}

// Len returns the number of active subscribers.
func (s *Stream[E, S]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Close closes every subscriber. Later Dispatch calls are no-ops. Close is
// idempotent.
func (s *Stream[E, S]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	for _, sub := range s.subscribers {
		sub.close()
	}
	clear(s.subscribers)
	s.mu.Unlock()

	return nil
}
