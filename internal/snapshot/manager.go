package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"FastDict/internal/dictionary"
)

var ErrNoDictionary = errors.New("no dictionary published")

// Manager publishes generations of built dictionaries and hands out
// snapshots to readers. A dictionary is built completely before Publish, so
// readers never observe one under construction.
//
// Concurrency model:
//   - generationMu (RWMutex): read-locked for snapshot acquisition,
//     write-locked for Publish.
//   - snapshotsMu (Mutex): protects activeSnapshots and pins.
//   - Lock ordering: generationMu → snapshotsMu.
type Manager struct {
	generationMu sync.RWMutex

	currentGeneration uint64
	current           *dictionary.Dictionary

	snapshotsMu     sync.Mutex
	activeSnapshots map[uint64]*Snapshot // snapshotID → snapshot
	pins            map[uint64]int       // generation → active snapshots

	nextSnapshotID atomic.Uint64

	logger *slog.Logger

	// LeakThreshold is the duration after which a held snapshot is considered
	// a potential leak. Zero disables leak detection.
	LeakThreshold time.Duration
}

// NewManager creates a Manager with nothing published (generation 0).
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		activeSnapshots: make(map[uint64]*Snapshot),
		pins:            make(map[uint64]int),
		logger:          logger,
		LeakThreshold:   5 * time.Minute,
	}
}

// Publish installs dict as the next generation and returns its number.
// Snapshots of earlier generations keep their dictionary until released.
func (m *Manager) Publish(dict *dictionary.Dictionary) uint64 {
	if dict == nil {
		panic("snapshot: publish of nil dictionary")
	}

	m.generationMu.Lock()
	defer m.generationMu.Unlock()

	m.currentGeneration++
	m.current = dict

	m.snapshotsMu.Lock()
	retiredReaders := 0
	for gen, n := range m.pins {
		if gen != m.currentGeneration {
			retiredReaders += n
		}
	}
	m.snapshotsMu.Unlock()

	m.logger.Info("generation published",
		"generation", m.currentGeneration,
		"words", dict.Len(),
		"states", dict.Automaton().NumStates(),
		"fingerprint", dict.Fingerprint(),
		"retired_readers", retiredReaders,
	)
	return m.currentGeneration
}

// Acquire creates a new Snapshot of the current generation.
// The caller MUST call Snapshot.Release() when done.
func (m *Manager) Acquire() (*Snapshot, error) {
	m.generationMu.RLock()
	generation, dict := m.currentGeneration, m.current
	if dict == nil {
		m.generationMu.RUnlock()
		return nil, ErrNoDictionary
	}

	snap := &Snapshot{
		ID:         m.nextSnapshotID.Add(1),
		Generation: generation,
		AcquiredAt: time.Now(),
		Dictionary: dict,
		manager:    m,
	}

	m.snapshotsMu.Lock()
	m.activeSnapshots[snap.ID] = snap
	m.pins[generation]++
	m.snapshotsMu.Unlock()
	m.generationMu.RUnlock()

	m.logger.Debug("snapshot acquired",
		"snapshot_id", snap.ID,
		"generation", snap.Generation,
	)
	return snap, nil
}

// CurrentGeneration returns the latest published generation, 0 if none.
func (m *Manager) CurrentGeneration() uint64 {
	m.generationMu.RLock()
	defer m.generationMu.RUnlock()
	return m.currentGeneration
}

// Current returns the latest published dictionary without pinning it.
func (m *Manager) Current() (*dictionary.Dictionary, uint64) {
	m.generationMu.RLock()
	defer m.generationMu.RUnlock()
	return m.current, m.currentGeneration
}

// ActiveSnapshotCount returns the number of currently held snapshots.
func (m *Manager) ActiveSnapshotCount() int {
	m.snapshotsMu.Lock()
	defer m.snapshotsMu.Unlock()
	return len(m.activeSnapshots)
}

// Readers returns the number of held snapshots of a generation.
func (m *Manager) Readers(generation uint64) int {
	m.snapshotsMu.Lock()
	defer m.snapshotsMu.Unlock()
	return m.pins[generation]
}

// DetectLeaks returns snapshots that have been held longer than LeakThreshold.
func (m *Manager) DetectLeaks() []*Snapshot {
	if m.LeakThreshold <= 0 {
		return nil
	}

	m.snapshotsMu.Lock()
	defer m.snapshotsMu.Unlock()

	var leaks []*Snapshot
	for _, snap := range m.activeSnapshots {
		if !snap.Released() && snap.HeldDuration() > m.LeakThreshold {
			leaks = append(leaks, snap)
		}
	}
	return leaks
}

// MonitorLeaks logs a warning for every snapshot held longer than
// LeakThreshold, checking once per interval until ctx is done.
func (m *Manager) MonitorLeaks(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || m.LeakThreshold <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, snap := range m.DetectLeaks() {
				m.logger.Warn("snapshot held past leak threshold",
					"snapshot_id", snap.ID,
					"generation", snap.Generation,
					"held", snap.HeldDuration(),
				)
			}
		}
	}
}

// releaseSnapshot removes a snapshot from the active set.
func (m *Manager) releaseSnapshot(snap *Snapshot) {
	m.snapshotsMu.Lock()
	delete(m.activeSnapshots, snap.ID)
	if m.pins[snap.Generation]--; m.pins[snap.Generation] <= 0 {
		delete(m.pins, snap.Generation)
	}
	m.snapshotsMu.Unlock()

	m.logger.Debug("snapshot released",
		"snapshot_id", snap.ID,
		"generation", snap.Generation,
		"held_duration", snap.HeldDuration(),
	)
}
