package snapshot

import (
	"sync/atomic"
	"time"

	"FastDict/internal/dictionary"
)

// Snapshot is a reader's view of one published generation. The dictionary it
// pins is fully built and read-only, so it stays valid after a newer
// generation is published.
//
// Callers MUST call Release() when done so the manager can account for
// readers of retired generations.
type Snapshot struct {
	// ID is a unique identifier for this snapshot.
	ID uint64

	// Generation is the published generation this snapshot observes.
	Generation uint64

	// AcquiredAt is when this snapshot was acquired.
	AcquiredAt time.Time

	// Dictionary is the dictionary of the pinned generation.
	Dictionary *dictionary.Dictionary

	manager  *Manager
	released atomic.Bool
}

// Release unpins the generation and removes this snapshot from the manager.
// It is safe to call Release multiple times; subsequent calls are no-ops.
func (s *Snapshot) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	if s.manager != nil {
		s.manager.releaseSnapshot(s)
	}
}

// Released returns true if this snapshot has been released.
func (s *Snapshot) Released() bool {
	return s.released.Load()
}

// HeldDuration returns how long this snapshot has been held.
func (s *Snapshot) HeldDuration() time.Duration {
	return time.Since(s.AcquiredAt)
}
