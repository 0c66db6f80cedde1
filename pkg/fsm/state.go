package fsm

// State is the constraint satisfied by every FSM value type.
// Values must be comparable so they can key maps and pair sets, and Name must
// be stable: it forms event identities and the encoded value in stores.
type State interface {
	comparable
	Name() string
}

// Phase identifies one of the three event groups surrounding a transition.
type Phase uint8

const (
	PhaseEnter Phase = iota + 1
	PhaseExit
	PhaseTransition
)

func (p Phase) String() string {
	switch p {
	case PhaseEnter:
		return "enter"
	case PhaseExit:
		return "exit"
	case PhaseTransition:
		return "transition"
	default:
		return "unknown"
	}
}

// Pair is an ordered (from, to) edge between two variants.
type Pair[S State] struct {
	From S
	To   S
}

// Edge is shorthand for building a Pair.
func Edge[S State](from, to S) Pair[S] {
	return Pair[S]{From: from, To: to}
}
