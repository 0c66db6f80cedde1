package fsm

import "log/slog"

// Config holds the environment-driven settings of one FSM type. Load it with
// pkg/config, using a prefix per FSM type when several share a process.
type Config struct {
	SuppressInitialEnter bool   `env:"FSM_SUPPRESS_INITIAL_ENTER" envDefault:"false"` // SuppressInitialEnter disables Enter events on attachment.
	MaxDepth             int    `env:"FSM_MAX_DEPTH" envDefault:"0"`                  // MaxDepth caps nested transition requests; 0 means unbounded.
	OverridesFile        string `env:"FSM_OVERRIDES_FILE"`                            // OverridesFile is an optional YAML file of per-entity overrides.
}

// Option configures an Engine during construction.
type Option[E comparable, S State] func(*Engine[E, S])

// WithOverrides sets the per-entity override registry.
func WithOverrides[E comparable, S State](o Overrides[E, S]) Option[E, S] {
	return func(e *Engine[E, S]) {
		if o != nil {
			e.overrides = o
		}
	}
}

// WithSuppressInitialEnter stops AttachInitial from firing Enter events.
// Use it when entities are assembled in several steps and Enter handlers
// would otherwise observe a partially built entity.
func WithSuppressInitialEnter[E comparable, S State]() Option[E, S] {
	return func(e *Engine[E, S]) {
		e.suppressInitial = true
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger[E comparable, S State](l *slog.Logger) Option[E, S] {
	return func(e *Engine[E, S]) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMaxDepth caps how deeply handlers may nest RequestTransition calls.
// Requests beyond the cap are dropped. Zero or negative means unbounded.
func WithMaxDepth[E comparable, S State](n int) Option[E, S] {
	return func(e *Engine[E, S]) {
		e.maxDepth = max(n, 0)
	}
}

// WithConfig applies the settings of cfg that are set. Zero values leave
// what earlier options configured untouched.
func WithConfig[E comparable, S State](cfg Config) Option[E, S] {
	return func(e *Engine[E, S]) {
		if cfg.SuppressInitialEnter {
			e.suppressInitial = true
		}
		if cfg.MaxDepth > 0 {
			e.maxDepth = cfg.MaxDepth
		}
	}
}
