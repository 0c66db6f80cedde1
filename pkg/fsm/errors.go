package fsm

import "errors"

var (
	ErrEmptyMachine       = errors.New("fsm: machine name cannot be empty")
	ErrInvalidMachineName = errors.New("fsm: machine name cannot contain '.'")
	ErrNoVariants         = errors.New("fsm: at least one variant is required")
	ErrDuplicateVariant   = errors.New("fsm: duplicate variant")
	ErrInvalidVariantName = errors.New("fsm: invalid variant name")
	ErrUnknownVariant     = errors.New("fsm: variant is not declared in the table")
	ErrNilTable           = errors.New("fsm: table cannot be nil")
	ErrNilPolicy          = errors.New("fsm: policy cannot be nil")
	ErrNilStore           = errors.New("fsm: store cannot be nil")
	ErrNilDispatcher      = errors.New("fsm: dispatcher cannot be nil")

	ErrInvalidOverrideMode = errors.New("fsm: invalid override mode")
	ErrInvalidOverrides    = errors.New("fsm: failed to decode overrides")
)
