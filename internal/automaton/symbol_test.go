package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbol_Match(t *testing.T) {
	tests := []struct {
		name  string
		guard Symbol
		input byte
		want  bool
	}{
		{"literal equal", Classify('a'), 'a', true},
		{"literal differs", Classify('a'), 'b', false},
		{"literal is case sensitive", Classify('a'), 'A', false},
		{"literal dot is not a wildcard", Classify('.'), 'x', false},
		{"any symbol letter", Any(), 'x', true},
		{"any symbol nul", Any(), 0x00, true},
		{"any symbol high byte", Any(), 0xff, true},
		{"whitespace space", Class(AnyWhitespace), ' ', true},
		{"whitespace tab", Class(AnyWhitespace), '\t', true},
		{"whitespace lf", Class(AnyWhitespace), '\n', true},
		{"whitespace cr", Class(AnyWhitespace), '\r', true},
		{"whitespace rejects letter", Class(AnyWhitespace), 'w', false},
		{"whitespace rejects vtab", Class(AnyWhitespace), '\v', false},
		{"digit zero", Class(AnyDigit), '0', true},
		{"digit nine", Class(AnyDigit), '9', true},
		{"digit rejects letter", Class(AnyDigit), 'd', false},
		{"unknown class", Class('x'), 'x', false},
		{"invalid never matches", Symbol{Char: 'a', Kind: Invalid}, 'a', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.guard.Match(tt.input))
		})
	}
}

func TestClassify(t *testing.T) {
	for c := 0; c < 256; c++ {
		s := Classify(byte(c))
		assert.Equal(t, Literal, s.Kind)
		assert.Equal(t, byte(c), s.Char)
		assert.True(t, s.Match(byte(c)))
	}
}

func TestSymbol_String(t *testing.T) {
	assert.Equal(t, `"c"`, Classify('c').String())
	assert.Equal(t, "[.]", Any().String())
	assert.Equal(t, "[d]", Class(AnyDigit).String())
	assert.Equal(t, "<invalid>", Symbol{Kind: Invalid}.String())
	assert.Equal(t, "literal", Literal.String())
	assert.Equal(t, "wildcard", Wildcard.String())
}
