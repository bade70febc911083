package analysis

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownNormalizer = errors.New("unknown normalizer")
	ErrNormalizerExists  = errors.New("normalizer already registered")
)

// Registry manages normalizer instances by name.
type Registry struct {
	normalizers map[string]Normalizer
	mu          sync.RWMutex
}

// NewRegistry creates a Registry with the built-in normalizers registered:
// "none", "lower" and "upper".
func NewRegistry() *Registry {
	r := &Registry{
		normalizers: make(map[string]Normalizer),
	}
	for _, n := range []Normalizer{NewIdentity(), NewLower(), NewUpper()} {
		r.normalizers[n.Name()] = n
	}
	return r
}

// Get returns the normalizer registered under the given name. The empty name
// selects "none".
func (r *Registry) Get(name string) (Normalizer, error) {
	if name == "" {
		name = "none"
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.normalizers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNormalizer, name)
	}
	return n, nil
}

// Register adds a custom normalizer under its own name.
func (r *Registry) Register(n Normalizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.normalizers[n.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrNormalizerExists, n.Name())
	}
	r.normalizers[n.Name()] = n
	return nil
}

// Names returns the sorted names of all registered normalizers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.normalizers))
	for name := range r.normalizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Lookup resolves name against the built-in normalizers.
func Lookup(name string) (Normalizer, error) {
	return defaultRegistry.Get(name)
}
