package prompts

import "fmt"

// MissingInputError reports the first unmet assembly precondition. Inputs
// are checked in a fixed order, so only one missing input is ever named.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("cannot assemble prompt: no %s available", e.Field)
}

// UnresolvedSlotError indicates a skeleton placeholder that no input was
// bound to, or a required marker missing from the skeleton itself.
type UnresolvedSlotError struct {
	Slot string
}

func (e *UnresolvedSlotError) Error() string {
	return fmt.Sprintf("prompt skeleton has unresolved slot %q", e.Slot)
}
