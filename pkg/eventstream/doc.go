// Package eventstream fans FSM events out to asynchronous consumers such as
// websocket sessions, audit writers or metrics collectors.
//
// The engine dispatches synchronously; handlers registered on fsm.Bus run
// inside the transition. A Stream is the opposite: Dispatch copies the event
// into each subscriber's buffered channel and returns immediately. When a
// buffer is full the event is dropped for that subscriber and counted in
// Dropped, so a slow consumer never stalls gameplay.
//
//	stream := eventstream.New[int, Life](eventstream.WithBufferSize[int, Life](128))
//	engine := fsm.MustNew(table, policy, store, fsm.Tee[int, Life](bus, stream))
//
//	sub := stream.Subscribe(ctx, table.GenericID(fsm.PhaseEnter))
//	for ev := range sub.Events() {
//	    log.Info("entered", logger.Entity(ev.Entity), logger.State(ev.State.Name()))
//	}
//
// Subscriptions end when their context is cancelled, when Close is called on
// the subscriber or when the stream is closed.
package eventstream
