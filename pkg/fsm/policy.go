package fsm

import (
	"context"
	"sync"
)

// Policy is the structural transition rule of one FSM type. CanTransition must
// be pure and total: it answers for every pair of declared variants, including
// identical ones.
type Policy[S State] interface {
	CanTransition(from, to S) bool
}

// ContextPolicy is implemented by policies that need to look at the store or
// at request-scoped values before deciding. Implementations should only add
// restrictions on top of CanTransition, although nothing enforces it.
type ContextPolicy[E comparable, S State] interface {
	Policy[S]
	CanTransitionContext(ctx context.Context, r Reader[E, S], entity E, from, to S) bool
}

// checkContext runs the context-aware check of p, falling back to the
// structural check when p has no richer variant.
func checkContext[E comparable, S State](ctx context.Context, p Policy[S], r Reader[E, S], entity E, from, to S) bool {
	if cp, ok := p.(ContextPolicy[E, S]); ok {
		return cp.CanTransitionContext(ctx, r, entity, from, to)
	}
	return p.CanTransition(from, to)
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc[S State] func(from, to S) bool

func (f PolicyFunc[S]) CanTransition(from, to S) bool {
	return f(from, to)
}

// AllowAllPolicy permits every transition, self loops included.
type AllowAllPolicy[S State] struct{}

func (AllowAllPolicy[S]) CanTransition(S, S) bool { return true }

// Guard vetoes a declared transition based on runtime data.
type Guard[E comparable, S State] func(ctx context.Context, r Reader[E, S], entity E, from, to S) bool

// TablePolicy is a Policy backed by an explicit set of allowed edges, each
// optionally carrying guards. Guards only run in the context-aware check.
type TablePolicy[E comparable, S State] struct {
	edges map[Pair[S]][]Guard[E, S]
	self  bool
	mu    sync.RWMutex
}

// TablePolicyOption configures a TablePolicy during construction.
type TablePolicyOption[E comparable, S State] func(*TablePolicy[E, S])

// NewTablePolicy creates a table policy. Without options it denies everything.
func NewTablePolicy[E comparable, S State](opts ...TablePolicyOption[E, S]) *TablePolicy[E, S] {
	p := &TablePolicy[E, S]{
		edges: make(map[Pair[S]][]Guard[E, S]),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithTransition allows from -> to, subject to all guards passing.
func WithTransition[E comparable, S State](from, to S, guards ...Guard[E, S]) TablePolicyOption[E, S] {
	return func(p *TablePolicy[E, S]) {
		p.Allow(from, to, guards...)
	}
}

// WithTransitions allows every listed edge without guards.
func WithTransitions[E comparable, S State](pairs ...Pair[S]) TablePolicyOption[E, S] {
	return func(p *TablePolicy[E, S]) {
		for _, pair := range pairs {
			p.Allow(pair.From, pair.To)
		}
	}
}

// WithSelfTransitions makes every v -> v transition legal.
func WithSelfTransitions[E comparable, S State]() TablePolicyOption[E, S] {
	return func(p *TablePolicy[E, S]) {
		p.self = true
	}
}

// Allow adds an edge. Guards for an edge that already exists are appended.
func (p *TablePolicy[E, S]) Allow(from, to S, guards ...Guard[E, S]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := Pair[S]{From: from, To: to}
	list := p.edges[key]
	for _, g := range guards {
		if g != nil {
			list = append(list, g)
		}
	}
	// Keep a non-nil entry so that the edge is declared even without guards.
	if list == nil {
		list = []Guard[E, S]{}
	}
	p.edges[key] = list
}

func (p *TablePolicy[E, S]) CanTransition(from, to S) bool {
	if p.self && from == to {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.edges[Pair[S]{From: from, To: to}]
	return ok
}

// CanTransitionContext requires the edge to be declared and all of its guards
// to pass. Self loops enabled by WithSelfTransitions have no guards.
func (p *TablePolicy[E, S]) CanTransitionContext(ctx context.Context, r Reader[E, S], entity E, from, to S) bool {
	p.mu.RLock()
	guards, ok := p.edges[Pair[S]{From: from, To: to}]
	p.mu.RUnlock()

	if !ok {
		return p.self && from == to
	}
	for _, g := range guards {
		if !g(ctx, r, entity, from, to) {
			return false
		}
	}
	return true
}
