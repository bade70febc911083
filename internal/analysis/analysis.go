package analysis

// Normalizer maps a word or query sequence onto the form stored in the
// dictionary. The same normalizer must be applied to loaded words and to the
// sequences they are matched against.
// Implementations MUST be safe for concurrent use.
type Normalizer interface {
	// Name returns the registry name of the normalizer.
	Name() string
	// Normalize returns the normalized form of s.
	Normalize(s string) string
}

// Identity leaves input untouched.
type Identity struct{}

// NewIdentity creates the pass-through normalizer.
func NewIdentity() *Identity {
	return &Identity{}
}

func (*Identity) Name() string { return "none" }

// Normalize returns s unchanged.
func (*Identity) Normalize(s string) string { return s }
