package fsm

import (
	"fmt"
	"strings"
)

// EventID identifies one event channel. Generic and variant-specific channels
// of the same machine never share an ID.
type EventID string

// Table is the closed variant set of one FSM type together with its event
// identities. It is built once at setup and is read-only afterwards, so it can
// be shared between goroutines.
type Table[S State] struct {
	machine  string
	variants []S
	ordinal  map[S]int
	byName   map[string]S

	genericEnter      EventID
	genericExit       EventID
	genericTransition EventID

	enter      []EventID
	exit       []EventID
	transition []EventID // row-major: from*N + to
}

// NewTable declares the variants of machine and generates every event
// identity: one generic ID per phase, N enter, N exit and N*N transition IDs.
func NewTable[S State](machine string, variants ...S) (*Table[S], error) {
	if strings.TrimSpace(machine) == "" {
		return nil, ErrEmptyMachine
	}
	// "." separates the parts of an event identity
	if strings.Contains(machine, ".") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMachineName, machine)
	}
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}

	n := len(variants)
	t := &Table[S]{
		machine:           machine,
		variants:          make([]S, 0, n),
		ordinal:           make(map[S]int, n),
		byName:            make(map[string]S, n),
		genericEnter:      EventID(machine + ".enter"),
		genericExit:       EventID(machine + ".exit"),
		genericTransition: EventID(machine + ".transition"),
		enter:             make([]EventID, n),
		exit:              make([]EventID, n),
		transition:        make([]EventID, n*n),
	}

	for i, v := range variants {
		if _, ok := t.ordinal[v]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVariant, v.Name())
		}
		name := v.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: variant %d has an empty name", ErrInvalidVariantName, i)
		}
		if strings.Contains(name, ".") {
			return nil, fmt.Errorf("%w: %s contains '.'", ErrInvalidVariantName, name)
		}
		if _, ok := t.byName[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVariant, name)
		}
		t.variants = append(t.variants, v)
		t.ordinal[v] = i
		t.byName[name] = v
	}

	for i, v := range t.variants {
		t.enter[i] = EventID(fmt.Sprintf("%s.enter.%s", machine, v.Name()))
		t.exit[i] = EventID(fmt.Sprintf("%s.exit.%s", machine, v.Name()))
		for j, w := range t.variants {
			t.transition[i*n+j] = EventID(fmt.Sprintf("%s.transition.%s.%s", machine, v.Name(), w.Name()))
		}
	}

	return t, nil
}

// MustNewTable is like NewTable but panics on invalid declarations.
func MustNewTable[S State](machine string, variants ...S) *Table[S] {
	t, err := NewTable(machine, variants...)
	if err != nil {
		panic(fmt.Sprintf("failed to create fsm table: %v", err))
	}
	return t
}

// Machine returns the FSM type name the table was declared with.
func (t *Table[S]) Machine() string { return t.machine }

// Variants returns a copy of the declared variants in declaration order.
func (t *Table[S]) Variants() []S {
	out := make([]S, len(t.variants))
	copy(out, t.variants)
	return out
}

// Len returns the number of declared variants.
func (t *Table[S]) Len() int { return len(t.variants) }

// Has reports whether v is a declared variant.
func (t *Table[S]) Has(v S) bool {
	_, ok := t.ordinal[v]
	return ok
}

// Lookup resolves a variant by its Name.
func (t *Table[S]) Lookup(name string) (S, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// GenericID returns the generic channel of a phase.
func (t *Table[S]) GenericID(p Phase) EventID {
	switch p {
	case PhaseEnter:
		return t.genericEnter
	case PhaseExit:
		return t.genericExit
	case PhaseTransition:
		return t.genericTransition
	default:
		return ""
	}
}

// EnterID returns the variant-specific enter channel of v.
func (t *Table[S]) EnterID(v S) (EventID, bool) {
	i, ok := t.ordinal[v]
	if !ok {
		return "", false
	}
	return t.enter[i], true
}

// ExitID returns the variant-specific exit channel of v.
func (t *Table[S]) ExitID(v S) (EventID, bool) {
	i, ok := t.ordinal[v]
	if !ok {
		return "", false
	}
	return t.exit[i], true
}

// TransitionID selects the single channel for the ordered pair (from, to)
// out of the N*N transition channels. Self pairs have their own channel.
func (t *Table[S]) TransitionID(from, to S) (EventID, bool) {
	i, ok := t.ordinal[from]
	if !ok {
		return "", false
	}
	j, ok := t.ordinal[to]
	if !ok {
		return "", false
	}
	return t.transition[i*len(t.variants)+j], true
}

// IDs returns every identity of the table: the three generic channels
// followed by enter, exit and transition channels.
func (t *Table[S]) IDs() []EventID {
	out := make([]EventID, 0, 3+len(t.enter)+len(t.exit)+len(t.transition))
	out = append(out, t.genericEnter, t.genericExit, t.genericTransition)
	out = append(out, t.enter...)
	out = append(out, t.exit...)
	out = append(out, t.transition...)
	return out
}
