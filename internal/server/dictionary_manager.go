package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"FastDict/internal/analysis"
	"FastDict/internal/config"
	"FastDict/internal/dictionary"
	"FastDict/internal/snapshot"
	"FastDict/internal/storage"
)

var (
	ErrNoWordList = errors.New("no word list configured")
)

// DictionaryManager builds dictionaries from the configured word list and
// publishes them as snapshot generations. A reload builds a complete new
// dictionary before publishing it, so queries never see a dictionary that is
// still being loaded.
type DictionaryManager struct {
	cfg        config.Dictionary
	normalizer analysis.Normalizer
	snapshots  *snapshot.Manager
	logger     *slog.Logger

	// reloadMu serializes builds and guards sources.
	reloadMu sync.Mutex
	// sources holds the fingerprint of every word-list file of the current
	// generation.
	sources map[string]storage.Fingerprint
}

// NewDictionaryManager loads the configured word list and publishes it as
// generation 1.
func NewDictionaryManager(cfg config.Dictionary, logger *slog.Logger) (*DictionaryManager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Words == "" {
		return nil, ErrNoWordList
	}
	normalizer, err := analysis.Lookup(cfg.Normalize)
	if err != nil {
		return nil, err
	}

	m := &DictionaryManager{
		cfg:        cfg,
		normalizer: normalizer,
		snapshots:  snapshot.NewManager(logger.With("component", "snapshot")),
		logger:     logger,
	}
	if _, _, err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Snapshots returns the generation manager.
func (m *DictionaryManager) Snapshots() *snapshot.Manager {
	return m.snapshots
}

// Reload rebuilds the dictionary from the word lists and publishes it. When
// every matched file still has the fingerprint it had at the last publish,
// nothing is rebuilt and changed is false. On failure the current generation
// stays in place.
func (m *DictionaryManager) Reload() (generation uint64, changed bool, err error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	start := time.Now()
	paths, err := dictionary.WordListFiles(m.cfg.Words)
	if err != nil {
		m.logger.Error("dictionary load failed", "words", m.cfg.Words, "error", err)
		return 0, false, fmt.Errorf("load dictionary: %w", err)
	}
	sources, err := fingerprintFiles(paths)
	if err != nil {
		m.logger.Error("dictionary load failed", "words", m.cfg.Words, "error", err)
		return 0, false, fmt.Errorf("load dictionary: %w", err)
	}
	if gen := m.snapshots.CurrentGeneration(); gen > 0 && maps.Equal(sources, m.sources) {
		m.logger.Debug("word lists unchanged", "generation", gen, "files", len(paths))
		return gen, false, nil
	}

	dict := dictionary.New(
		dictionary.WithNormalizer(m.normalizer),
		dictionary.WithLogger(m.logger.With("component", "dictionary")),
	)
	if err := dict.LoadFiles(paths); err != nil {
		m.logger.Error("dictionary load failed", "words", m.cfg.Words, "error", err)
		return 0, false, fmt.Errorf("load dictionary: %w", err)
	}

	gen := m.snapshots.Publish(dict)
	m.sources = sources
	m.logger.Info("dictionary loaded",
		"words", dict.Len(),
		"files", len(paths),
		"generation", gen,
		"duration", time.Since(start),
	)
	return gen, true, nil
}

// fingerprintFiles maps each path to the fingerprint of its content.
func fingerprintFiles(paths []string) (map[string]storage.Fingerprint, error) {
	sources := make(map[string]storage.Fingerprint, len(paths))
	for _, p := range paths {
		fp, err := storage.ComputeFileFingerprint(p)
		if err != nil {
			return nil, err
		}
		sources[p] = fp
	}
	return sources, nil
}

// Watch reloads the dictionary whenever a file matching the word-list pattern
// is written, created, renamed or removed. Events are debounced by
// cfg.WatchDebounce. When the pattern reaches below its base directory, every
// subdirectory is watched, including ones created later. Watch blocks until
// ctx is done.
func (m *DictionaryManager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	pattern := filepath.ToSlash(m.cfg.Words)
	base, rel := doublestar.SplitPattern(pattern)
	recursive := strings.Contains(rel, "/") || strings.Contains(rel, "**")
	dirs, err := addWatches(w, filepath.FromSlash(base), recursive)
	if err != nil {
		return err
	}
	m.logger.Info("watching word lists", "dir", base, "pattern", pattern, "dirs", dirs)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(m.cfg.WatchDebounce.Duration)
		} else {
			timer.Reset(m.cfg.WatchDebounce.Duration)
		}
		pending = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if recursive && ev.Has(fsnotify.Create) && isDir(ev.Name) {
				// Files may land in the new directory before it is watched.
				n, err := addWatches(w, ev.Name, true)
				if err != nil {
					m.logger.Warn("watch new directory failed", "dir", ev.Name, "error", err)
					continue
				}
				m.logger.Debug("watching new directory", "dir", ev.Name, "dirs", n)
				schedule()
				continue
			}
			if !m.relevant(pattern, ev) {
				continue
			}
			m.logger.Debug("word list changed", "path", ev.Name, "op", ev.Op.String())
			schedule()

		case <-pending:
			pending = nil
			if _, _, err := m.Reload(); err != nil {
				m.logger.Warn("reload after change failed; keeping current generation", "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("watcher error", "error", err)
		}
	}
}

// addWatches adds root to w and, when recursive, every directory below it.
// It returns the number of directories added.
func addWatches(w *fsnotify.Watcher, root string, recursive bool) (int, error) {
	if !recursive {
		if err := w.Add(root); err != nil {
			return 0, fmt.Errorf("watch %s: %w", root, err)
		}
		return 1, nil
	}
	n := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		n++
		return nil
	})
	return n, err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (m *DictionaryManager) relevant(pattern string, ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	ok, err := doublestar.PathMatch(filepath.FromSlash(pattern), ev.Name)
	return err == nil && ok
}
