package automaton

import "strconv"

// Kind tags how a Symbol guards a transition.
type Kind uint8

const (
	// Literal matches exactly one input byte.
	Literal Kind = iota
	// Wildcard matches a class of input bytes, selected by Symbol.Char.
	Wildcard
	// Invalid never matches. Transitions never carry an Invalid guard.
	Invalid
)

// Wildcard classes. A Wildcard symbol stores its class in Char.
const (
	AnySymbol     byte = '.'
	AnyWhitespace byte = 'w'
	AnyDigit      byte = 'd'
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Wildcard:
		return "wildcard"
	default:
		return "invalid"
	}
}

// Symbol is a classified input character used as a transition guard.
type Symbol struct {
	Char byte
	Kind Kind
}

// Classify returns the literal symbol for c. Every byte has a literal
// classification, so Classify cannot fail.
func Classify(c byte) Symbol {
	return Symbol{Char: c, Kind: Literal}
}

// Any returns the wildcard symbol matching every input byte.
func Any() Symbol {
	return Symbol{Char: AnySymbol, Kind: Wildcard}
}

// Class returns a wildcard symbol for the given class byte.
func Class(class byte) Symbol {
	return Symbol{Char: class, Kind: Wildcard}
}

// Match reports whether input satisfies the guard.
func (s Symbol) Match(input byte) bool {
	switch s.Kind {
	case Literal:
		return input == s.Char
	case Wildcard:
		return matchClass(s.Char, input)
	default:
		return false
	}
}

func matchClass(class, input byte) bool {
	switch class {
	case AnySymbol:
		return true
	case AnyWhitespace:
		switch input {
		case ' ', '\t', '\n', '\r':
			return true
		}
		return false
	case AnyDigit:
		return input >= '0' && input <= '9'
	default:
		return false
	}
}

// String renders literals quoted and wildcard classes in brackets.
func (s Symbol) String() string {
	switch s.Kind {
	case Literal:
		return strconv.Quote(string([]byte{s.Char}))
	case Wildcard:
		return "[" + string(s.Char) + "]"
	default:
		return "<invalid>"
	}
}
