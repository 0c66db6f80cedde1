package fsm

import (
	"context"
	"fmt"
	"sync"
)

// Mode selects how an Override treats its pair set.
type Mode uint8

const (
	// ModeAllowAll permits everything unless WithRules defers to the policy.
	ModeAllowAll Mode = iota
	// ModeDenyAll blocks every transition. WithRules has no effect.
	ModeDenyAll
	// ModeWhitelist permits listed pairs; others fall back to the policy only with WithRules.
	ModeWhitelist
	// ModeBlacklist blocks listed pairs; others fall back to the policy only with WithRules.
	ModeBlacklist
)

func (m Mode) String() string {
	switch m {
	case ModeAllowAll:
		return "allow_all"
	case ModeDenyAll:
		return "deny_all"
	case ModeWhitelist:
		return "whitelist"
	case ModeBlacklist:
		return "blacklist"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode converts the textual form produced by Mode.String back to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "allow_all", "all":
		return ModeAllowAll, nil
	case "deny_all", "none":
		return ModeDenyAll, nil
	case "whitelist":
		return ModeWhitelist, nil
	case "blacklist":
		return ModeBlacklist, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOverrideMode, s)
	}
}

// Override is a per-entity overlay with absolute precedence over the type
// policy. The zero value behaves as AllowAll without rules.
type Override[S State] struct {
	Mode Mode
	// WithRules lets the type policy decide pairs the override does not
	// explicitly decide. Ignored by ModeDenyAll.
	WithRules bool

	pairs map[Pair[S]]struct{}
}

// AllowAll creates an override permitting every transition.
func AllowAll[S State]() *Override[S] {
	return &Override[S]{Mode: ModeAllowAll}
}

// DenyAll creates an override blocking every transition.
func DenyAll[S State]() *Override[S] {
	return &Override[S]{Mode: ModeDenyAll}
}

// Whitelist creates an override permitting exactly the listed pairs.
func Whitelist[S State](pairs ...Pair[S]) *Override[S] {
	return (&Override[S]{Mode: ModeWhitelist}).add(pairs)
}

// Blacklist creates an override blocking exactly the listed pairs.
func Blacklist[S State](pairs ...Pair[S]) *Override[S] {
	return (&Override[S]{Mode: ModeBlacklist}).add(pairs)
}

// WithRulesEnabled turns on policy fallback and returns o for chaining.
func (o *Override[S]) WithRulesEnabled() *Override[S] {
	o.WithRules = true
	return o
}

// AndAllow extends the pair set. Meaningful for whitelists.
func (o *Override[S]) AndAllow(pairs ...Pair[S]) *Override[S] {
	return o.add(pairs)
}

// AndDeny extends the pair set. Meaningful for blacklists.
func (o *Override[S]) AndDeny(pairs ...Pair[S]) *Override[S] {
	return o.add(pairs)
}

func (o *Override[S]) add(pairs []Pair[S]) *Override[S] {
	if len(pairs) == 0 {
		return o
	}
	if o.pairs == nil {
		o.pairs = make(map[Pair[S]]struct{}, len(pairs))
	}
	for _, p := range pairs {
		o.pairs[p] = struct{}{}
	}
	return o
}

// Contains reports whether (from, to) is in the pair set.
func (o *Override[S]) Contains(from, to S) bool {
	_, ok := o.pairs[Pair[S]{From: from, To: to}]
	return ok
}

// Pairs returns the pair set in no particular order.
func (o *Override[S]) Pairs() []Pair[S] {
	out := make([]Pair[S], 0, len(o.pairs))
	for p := range o.pairs {
		out = append(out, p)
	}
	return out
}

// IsTransitionAllowed answers from the override alone, ignoring WithRules and
// the type policy.
func (o *Override[S]) IsTransitionAllowed(from, to S) bool {
	switch o.Mode {
	case ModeAllowAll:
		return true
	case ModeWhitelist:
		return o.Contains(from, to)
	case ModeBlacklist:
		return !o.Contains(from, to)
	default:
		return false
	}
}

// Overrides looks up the override attached to an entity.
type Overrides[E comparable, S State] interface {
	Override(ctx context.Context, entity E) (*Override[S], bool)
}

// OverrideSet is an in-memory Overrides registry safe for concurrent use.
// Entity owners attach and detach overrides; the engine only reads them.
type OverrideSet[E comparable, S State] struct {
	items map[E]*Override[S]
	mu    sync.RWMutex
}

// NewOverrideSet creates an empty registry.
func NewOverrideSet[E comparable, S State]() *OverrideSet[E, S] {
	return &OverrideSet[E, S]{
		items: make(map[E]*Override[S]),
	}
}

// Set attaches o to entity, replacing any previous override. A nil o detaches.
func (s *OverrideSet[E, S]) Set(entity E, o *Override[S]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o == nil {
		delete(s.items, entity)
		return
	}
	s.items[entity] = o
}

// Remove detaches the override of entity.
func (s *OverrideSet[E, S]) Remove(entity E) {
	s.Set(entity, nil)
}

func (s *OverrideSet[E, S]) Override(_ context.Context, entity E) (*Override[S], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.items[entity]
	return o, ok
}

// Len returns the number of entities with an override.
func (s *OverrideSet[E, S]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
