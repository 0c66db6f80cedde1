package statestore

import (
	"fmt"

	"github.com/dmitrymomot/entityfsm/pkg/fsm"
)

// KeyFunc encodes an entity as the string key used by a backend.
// It must be injective: two entities must never share a key.
type KeyFunc[E comparable] func(E) string

// DefaultKey formats the entity with fmt.Sprint, which suits integer, string
// and uuid.UUID entities.
func DefaultKey[E comparable](entity E) string {
	return fmt.Sprint(entity)
}

// decode maps a stored variant name back to a value of the table.
func decode[S fsm.State](table *fsm.Table[S], name string) (S, error) {
	v, ok := table.Lookup(name)
	if !ok {
		var zero S
		return zero, fmt.Errorf("%w: %s.%s", ErrUnknownState, table.Machine(), name)
	}
	return v, nil
}
