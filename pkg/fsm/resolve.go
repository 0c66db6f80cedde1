package fsm

import "context"

// Resolve decides whether from -> to is legal for entity.
//
// The override always wins where it makes an explicit decision. The policy is
// consulted only when no override is attached, or when the override leaves
// the pair undecided and has WithRules set. Self loops get no special
// treatment.
func Resolve[E comparable, S State](ctx context.Context, o *Override[S], p Policy[S], r Reader[E, S], entity E, from, to S) bool {
	if o == nil {
		return checkContext(ctx, p, r, entity, from, to)
	}

	switch o.Mode {
	case ModeDenyAll:
		return false
	case ModeAllowAll:
		if !o.WithRules {
			return true
		}
		return checkContext(ctx, p, r, entity, from, to)
	case ModeWhitelist:
		if o.Contains(from, to) {
			return true
		}
		if o.WithRules {
			return checkContext(ctx, p, r, entity, from, to)
		}
		return false
	case ModeBlacklist:
		if o.Contains(from, to) {
			return false
		}
		if o.WithRules {
			return checkContext(ctx, p, r, entity, from, to)
		}
		return true
	default:
		return false
	}
}
