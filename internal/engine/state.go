package engine

import "fmt"

// State is the form mode of the single user: creating a new reservation or
// editing an existing one. It is a plain value passed in and returned by
// every engine call rather than a field mutated behind the caller's back.
type State struct {
	editing bool
	target  int64
}

// Creating is the initial state.
func Creating() State {
	return State{}
}

// Editing targets the reservation with id.
func Editing(id int64) State {
	return State{editing: true, target: id}
}

// Target returns the id being edited and whether the state is Editing.
func (s State) Target() (int64, bool) {
	return s.target, s.editing
}

func (s State) IsCreating() bool {
	return !s.editing
}

func (s State) String() string {
	if s.editing {
		return fmt.Sprintf("editing(%d)", s.target)
	}
	return "creating"
}
