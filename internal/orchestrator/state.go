package orchestrator

import "errors"

// ErrInvalidTemplate is returned while a shader or unit has no usable
// template.
var ErrInvalidTemplate = errors.New("invalid template")

// State is where a pass unit is in its build cycle.
type State int

const (
	Uninitialized State = iota
	TemplateBound
	DataCollected
	PassFilled
)

func (s State) String() string {
	switch s {
	case TemplateBound:
		return "template_bound"
	case DataCollected:
		return "data_collected"
	case PassFilled:
		return "pass_filled"
	}
	return "uninitialized"
}
