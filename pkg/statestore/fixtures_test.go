package statestore_test

import "github.com/dmitrymomot/entityfsm/pkg/fsm"

type Life int

const (
	Alive Life = iota
	Dying
	Dead
)

func (l Life) Name() string {
	switch l {
	case Alive:
		return "alive"
	case Dying:
		return "dying"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

func lifeTable() *fsm.Table[Life] {
	return fsm.MustNewTable("life", Alive, Dying, Dead)
}
