package automaton

import "fmt"

// Cursor is a position in an Automaton. The automaton is never modified by a
// cursor, so many cursors may scan the same fully built automaton at once.
// A single Cursor is not safe for concurrent use.
type Cursor struct {
	a   *Automaton
	cur StateID
}

// Reset moves the cursor to the start state.
func (c *Cursor) Reset() {
	c.cur = StartState
}

// State returns the current state ID.
func (c *Cursor) State() StateID {
	return c.cur
}

// Accepting returns the word index completed at the current state.
func (c *Cursor) Accepting() (int, bool) {
	s := c.state()
	return s.accept, s.IsAccepting()
}

// Step advances the cursor by one input byte.
func (c *Cursor) Step(input byte) {
	c.cur = c.state().Advance(c.cur, input)
}

func (c *Cursor) state() *State {
	if int(c.cur) >= len(c.a.states) {
		panic(fmt.Sprintf("automaton: cursor at state %d outside table of %d", c.cur, len(c.a.states)))
	}
	return &c.a.states[c.cur]
}

// Scan resets the cursor, feeds text one byte at a time and returns the
// marker of every accepting state reached, in order. Results are not
// deduplicated.
func (c *Cursor) Scan(text string) []int {
	return c.scan(text, nil)
}

func (c *Cursor) scan(text string, out []int) []int {
	c.Reset()
	for i := 0; i < len(text); i++ {
		c.Step(text[i])
		if s := &c.a.states[c.cur]; s.IsAccepting() {
			out = append(out, s.accept)
		}
	}
	return out
}

// ScanWithRecovery scans text and then every proper suffix text[k:] for
// k = 1..len(text)-1, concatenating the results. Restarting at each offset
// recovers occurrences a single pass misses when an earlier byte led the
// cursor down an unrelated branch. Cost is quadratic in len(text).
func (c *Cursor) ScanWithRecovery(text string) []int {
	var out []int
	out = c.scan(text, out)
	for k := 1; k < len(text); k++ {
		out = c.scan(text[k:], out)
	}
	return out
}
