package automaton

import (
	"fmt"
	"io"
	"strings"
)

// StateID identifies a state by its position in the automaton's state table.
// IDs are stable once assigned.
type StateID uint32

// StartState is the state every scan begins in. It always exists and is
// never accepting.
const StartState StateID = 0

// Automaton recognizes occurrences of a set of words as substrings of an
// input. It owns all states in a single table; transitions refer to states
// by ID only, so the cycles created by wildcard fallbacks need no pointers.
//
// Lifecycle:
//   - Build phase: words are added one at a time with Merge, in the order
//     the caller assigns their indices. Merge is not safe for concurrent use.
//   - Query phase: the automaton is read-only. Any number of Cursors may scan
//     it concurrently. The Reset/Step/Scan methods on Automaton itself use a
//     single built-in cursor and are not safe for concurrent use.
//
// The construction shares prefixes between words and adds same-word restart
// edges, but it does not compute failure links across different words.
// ScanWithRecovery compensates by rescanning every suffix of the input.
type Automaton struct {
	states []State
	cursor Cursor
}

// New creates an empty automaton holding only the start state.
func New() *Automaton {
	a := &Automaton{states: []State{newState(NoMatch)}}
	a.cursor = Cursor{a: a}
	return a
}

// RebuildSingle discards all states and builds a linear recognizer for word.
// States 0..len(word)-1 are plain and state len(word) accepts index. Each
// intermediate state tries, in order: progression on word[i], restart on
// word[0] back to state 1, then the wildcard fallback to the start state.
// An empty word is a no-op.
func (a *Automaton) RebuildSingle(word string, index int) {
	if len(word) == 0 {
		return
	}
	checkIndex(index)

	states := make([]State, 0, len(word)+1)
	for range len(word) {
		states = append(states, newState(NoMatch))
	}
	states = append(states, newState(index))

	states[0].AddTransition(1, Classify(word[0]))
	for i := 1; i < len(word); i++ {
		states[i].AddTransition(1, Classify(word[0]))
		states[i].AddTransition(StateID(i+1), Classify(word[i]))
	}

	a.states = states
	a.cursor.Reset()
}

// Merge inserts word, tagged with index, into the automaton.
//
// The walk from the start state follows existing literal transitions only.
// At the first byte without one, a new branch of states is created for the
// remainder of the word; the last new state accepts index. Before leaving a
// non-accepting state through a new branch, a restart edge on word[0] back to
// the tracked word-start state is added unless it already exists.
//
// A word that ends on an existing state creates nothing, so duplicates and
// prefixes of earlier words are not recognized separately. An empty word is
// a no-op. On an automaton holding only the bootstrap start state, Merge
// delegates to RebuildSingle.
func (a *Automaton) Merge(word string, index int) {
	if len(word) == 0 {
		return
	}
	checkIndex(index)
	if a.isBootstrap() {
		a.RebuildSingle(word, index)
		return
	}

	cur := StartState
	wordStart := StartState
	for i := 0; i < len(word); i++ {
		c := word[i]
		if next, ok := a.states[cur].literalTarget(c); ok {
			cur = next
			wordStart = next
			continue
		}

		accept := NoMatch
		if i == len(word)-1 {
			accept = index
		}
		a.states = append(a.states, newState(accept))
		dst := StateID(len(a.states) - 1)

		if i == 0 {
			wordStart = dst
		} else if src := &a.states[cur]; !src.IsAccepting() && !src.hasLiteral(word[0], wordStart) {
			src.AddTransition(wordStart, Classify(word[0]))
		}
		a.states[cur].AddTransition(dst, Classify(c))
		cur = dst
	}
	a.cursor.Reset()
}

// isBootstrap reports whether the automaton holds nothing beyond the start
// state and its wildcard self-reference.
func (a *Automaton) isBootstrap() bool {
	return len(a.states) == 1 && len(a.states[0].transitions) == 1
}

func checkIndex(index int) {
	if index < 0 {
		panic(fmt.Sprintf("automaton: negative word index %d", index))
	}
}

// NumStates returns the size of the state table.
func (a *Automaton) NumStates() int {
	return len(a.states)
}

// NumTransitions returns the total number of transitions over all states.
func (a *Automaton) NumTransitions() int {
	n := 0
	for i := range a.states {
		n += len(a.states[i].transitions)
	}
	return n
}

// State returns the state with the given ID. It panics if id is out of range.
func (a *Automaton) State(id StateID) *State {
	if int(id) >= len(a.states) {
		panic(fmt.Sprintf("automaton: state %d out of range [0,%d)", id, len(a.states)))
	}
	return &a.states[id]
}

// NewCursor returns an independent cursor positioned at the start state.
// Cursors only read the automaton, so each concurrent reader should own one.
func (a *Automaton) NewCursor() *Cursor {
	return &Cursor{a: a}
}

// Reset moves the built-in cursor to the start state.
func (a *Automaton) Reset() { a.cursor.Reset() }

// Step advances the built-in cursor by one input byte.
func (a *Automaton) Step(input byte) { a.cursor.Step(input) }

// Current returns the state the built-in cursor is in.
func (a *Automaton) Current() StateID { return a.cursor.State() }

// Scan runs text through the built-in cursor. See Cursor.Scan.
func (a *Automaton) Scan(text string) []int { return a.cursor.Scan(text) }

// ScanWithRecovery runs the recovery scan on the built-in cursor. See
// Cursor.ScanWithRecovery.
func (a *Automaton) ScanWithRecovery(text string) []int {
	return a.cursor.ScanWithRecovery(text)
}

// Dump writes a human-readable rendering of the state table to w. The state
// holding the built-in cursor is flagged with {*}.
func (a *Automaton) Dump(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "automaton: %d states, %d transitions\n", a.NumStates(), a.NumTransitions())
	for i := range a.states {
		s := &a.states[i]
		fmt.Fprintf(&b, "  [%d] accepting=%d", i, s.accept)
		if StateID(i) == a.cursor.cur {
			b.WriteString(" {*}")
		}
		b.WriteByte('\n')
		for _, t := range s.transitions {
			fmt.Fprintf(&b, "      |--> %s\n", t)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
