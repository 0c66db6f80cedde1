// Package logger builds *slog.Logger values for services embedding the FSM
// engine and provides attribute helpers so that state-machine log lines use
// the same keys everywhere (machine, entity, from, to, state, depth).
//
// New takes functional options: output format (json or text), level, static
// attributes and ContextExtractor callbacks that pull values such as a trace
// id from the context of each logging call. WithConfig applies settings
// loaded from LOG_LEVEL, LOG_FORMAT and LOG_SERVICE.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithDevelopment("game-server"),
//	    logger.WithContextExtractors(logger.TraceExtractor),
//	)
//	engine := fsm.MustNew(table, policy, store, bus, fsm.WithLogger[int, Life](log))
//
//	ctx := logger.WithTrace(context.Background(), "tick-42")
//	engine.RequestTransition(ctx, 7, Dying)
//
// The engine logs ignored and denied requests at debug level, so use
// WithDevelopment or LOG_LEVEL=debug to see why a request had no effect.
//
// Error returns an empty attribute for nil errors, so it can be passed
// unconditionally.
package logger
