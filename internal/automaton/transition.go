package automaton

import "fmt"

// Transition is a guarded edge to Target. It is owned by its source State.
type Transition struct {
	Target StateID
	Guard  Symbol
}

// Match reports whether the transition fires on input.
func (t Transition) Match(input byte) bool {
	return t.Guard.Match(input)
}

func (t Transition) String() string {
	return fmt.Sprintf("%s ==> %d", t.Guard, t.Target)
}
