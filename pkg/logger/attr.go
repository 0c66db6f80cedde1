package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Machine records the FSM type name under the key "machine".
func Machine(name string) slog.Attr {
	return slog.String("machine", name)
}

// Entity records the entity identifier under the key "entity".
func Entity(id any) slog.Attr {
	return slog.Any("entity", id)
}

// From records the source state under the key "from".
func From(state string) slog.Attr {
	return slog.String("from", state)
}

// To records the requested state under the key "to".
func To(state string) slog.Attr {
	return slog.String("to", state)
}

// State records a single state under the key "state".
func State(state string) slog.Attr {
	return slog.String("state", state)
}

// EventID records an event channel under the key "event_id".
func EventID(id string) slog.Attr {
	return slog.String("event_id", id)
}

// Depth records the nesting depth of a transition request.
func Depth(d int) slog.Attr {
	return slog.Int("depth", d)
}

// SubscriberID records an event stream subscriber under the key "subscriber_id".
func SubscriberID(id string) slog.Attr {
	return slog.String("subscriber_id", id)
}
