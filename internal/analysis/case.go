package analysis

import (
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CaseNormalizer folds input to lower or upper case using Unicode case
// mapping rules.
//
// A cases.Caser is stateful, so casers are pooled rather than shared.
type CaseNormalizer struct {
	name string
	pool sync.Pool
}

// NewLower creates a normalizer mapping input to lower case.
func NewLower() *CaseNormalizer {
	return newCaseNormalizer("lower", func() cases.Caser { return cases.Lower(language.Und) })
}

// NewUpper creates a normalizer mapping input to upper case.
func NewUpper() *CaseNormalizer {
	return newCaseNormalizer("upper", func() cases.Caser { return cases.Upper(language.Und) })
}

func newCaseNormalizer(name string, mk func() cases.Caser) *CaseNormalizer {
	n := &CaseNormalizer{name: name}
	n.pool.New = func() any {
		c := mk()
		return &c
	}
	return n
}

func (n *CaseNormalizer) Name() string { return n.name }

// Normalize returns the case-folded form of s.
func (n *CaseNormalizer) Normalize(s string) string {
	if s == "" {
		return s
	}
	c := n.pool.Get().(*cases.Caser)
	defer n.pool.Put(c)
	c.Reset()
	return c.String(s)
}
