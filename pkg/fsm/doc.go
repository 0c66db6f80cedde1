// Package fsm attaches one finite-state-machine value per FSM type to
// addressable entities and reacts to state changes through synchronous event
// dispatch instead of polling.
//
// An FSM type is a closed set of variants (any comparable type with a Name
// method) declared once in a Table, plus one Policy deciding which transitions
// are structurally legal. The Engine ties them to a Store holding the current
// value per entity and a Dispatcher delivering events to handlers.
//
// # Events
//
// Every phase has two channels. The generic channel ("<machine>.enter",
// "<machine>.exit", "<machine>.transition") carries the value(s) as data. The
// variant-specific channels carry nothing but their identity: one per variant
// for enter and exit, one per ordered pair for transitions, N*N in total,
// self pairs included. Handlers registered on a specific channel never need to
// inspect a value.
//
// An accepted RequestTransition fires, in order:
//
//	Exit (generic, from)        Exit (specific, from)
//	Transition (generic)        Transition (specific, from -> to)
//	-- store now holds to --
//	Enter (generic, to)         Enter (specific, to)
//
// # Validation
//
// An Override attached to an entity has absolute precedence over the type
// Policy. DenyAll blocks everything. AllowAll, Whitelist and Blacklist decide
// what they explicitly cover; pairs they leave open go to the policy only when
// WithRules is set. Without an override the policy decides alone. Policies
// implementing ContextPolicy are asked through CanTransitionContext and can
// read the store.
//
// # Failure model
//
// RequestTransition has no result. Requests for entities without a value and
// denied requests are dropped silently; the only trace is a debug log line.
// Compare state before and after, or observe the events, to learn the outcome.
//
// # Usage
//
//	type Life string
//
//	func (l Life) Name() string { return string(l) }
//
//	const (
//	    Alive Life = "alive"
//	    Dying Life = "dying"
//	    Dead  Life = "dead"
//	)
//
//	table := fsm.MustNewTable("life", Alive, Dying, Dead)
//	policy := fsm.NewTablePolicy(
//	    fsm.WithTransitions[int](fsm.Edge(Alive, Dying), fsm.Edge(Dying, Dead)),
//	    fsm.WithSelfTransitions[int, Life](),
//	)
//	bus := fsm.NewBus[int](table)
//	bus.OnEnter(Dying, func(ctx context.Context, entity int) { /* ... */ })
//
//	engine := fsm.MustNew(table, policy, fsm.NewMemoryStore[int, Life](), bus)
//	_ = engine.Attach(ctx, 7, Alive)
//	engine.RequestTransition(ctx, 7, Dying)
//
// # Initial attachment
//
// Attaching a value is not a transition: it is never validated and fires only
// the two Enter events. When an entity is assembled over several steps those
// handlers may run before the rest of the entity exists. WithSuppressInitialEnter
// turns attachment events off for the FSM type.
//
// # Concurrency
//
// The engine does not lock around a transition and never spawns goroutines.
// Handlers run on the caller's goroutine and may request further transitions
// with the context they receive. Recursion depth is unbounded unless
// WithMaxDepth is used; cascades that never settle are the caller's problem.
package fsm
