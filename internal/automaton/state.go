package automaton

import "fmt"

// NoMatch is the accepting marker of a non-accepting state.
const NoMatch = -1

// State is a node of the automaton. It holds an optional accepting marker
// (the index of the word it completes) and an ordered list of transitions.
//
// Transition order is priority order: AddTransition inserts at the front, so
// the wildcard fallback added at creation drifts to the back as more specific
// literal transitions accumulate.
type State struct {
	accept      int
	transitions []Transition
}

// newState creates a state with the given marker and its wildcard fallback
// to the start state.
func newState(accept int) State {
	s := State{accept: accept}
	s.AddTransition(StartState, Any())
	return s
}

// IsAccepting reports whether the state completes a word.
func (s *State) IsAccepting() bool {
	return s.accept >= 0
}

// Accepting returns the word index completed by this state, or NoMatch.
func (s *State) Accepting() int {
	return s.accept
}

// Transitions returns the transitions in evaluation order. The slice is
// shared with the state and must not be modified.
func (s *State) Transitions() []Transition {
	return s.transitions
}

// AddTransition inserts a transition ahead of all existing ones.
func (s *State) AddTransition(target StateID, guard Symbol) {
	if guard.Kind == Invalid {
		panic(fmt.Sprintf("automaton: invalid guard %v on transition to %d", guard, target))
	}
	s.transitions = append(s.transitions, Transition{})
	copy(s.transitions[1:], s.transitions)
	s.transitions[0] = Transition{Target: target, Guard: guard}
}

// Advance returns the target of the first transition matching input. If no
// transition matches, self is returned unchanged.
func (s *State) Advance(self StateID, input byte) StateID {
	for _, t := range s.transitions {
		if t.Match(input) {
			return t.Target
		}
	}
	return self
}

// literalTarget returns the target of the first literal transition on c.
// Wildcards are skipped.
func (s *State) literalTarget(c byte) (StateID, bool) {
	for _, t := range s.transitions {
		if t.Guard.Kind == Literal && t.Guard.Char == c {
			return t.Target, true
		}
	}
	return 0, false
}

// hasLiteral reports whether a literal transition on c to target exists.
func (s *State) hasLiteral(c byte, target StateID) bool {
	for _, t := range s.transitions {
		if t.Guard.Kind == Literal && t.Guard.Char == c && t.Target == target {
			return true
		}
	}
	return false
}
