// Package dictionary loads word lists into an automaton and answers which
// words a sequence contains.
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"FastDict/internal/analysis"
	"FastDict/internal/automaton"
	"FastDict/internal/storage"
)

// maxWordLength bounds a single line of a word list.
const maxWordLength = 1 << 20

var (
	ErrNoWordLists = errors.New("no word lists match pattern")
	ErrWordTooLong = errors.New("word exceeds maximum length")
)

// Dictionary is an ordered word list and the automaton built from it.
//
// Words are indexed by load order. Loading mutates the automaton and must
// not overlap with queries; once loading is complete ContainedWords is safe
// for concurrent use.
type Dictionary struct {
	words      []string
	auto       *automaton.Automaton
	normalizer analysis.Normalizer
	fp         *storage.Fingerprinter
	logger     *slog.Logger
}

// Option configures a Dictionary.
type Option func(*Dictionary)

// WithNormalizer sets the normalizer applied to loaded words and queries.
func WithNormalizer(n analysis.Normalizer) Option {
	return func(d *Dictionary) {
		if n != nil {
			d.normalizer = n
		}
	}
}

// WithLogger sets the logger used for load progress.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dictionary) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates an empty Dictionary.
func New(opts ...Option) *Dictionary {
	d := &Dictionary{
		auto:       automaton.New(),
		normalizer: analysis.NewIdentity(),
		fp:         storage.NewFingerprinter(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add normalizes word and appends it to the dictionary. Empty words are
// skipped and reported with added=false.
func (d *Dictionary) Add(word string) (index int, added bool) {
	word = d.normalizer.Normalize(word)
	if word == "" {
		return -1, false
	}
	index = len(d.words)
	d.words = append(d.words, word)
	d.auto.Merge(word, index)
	d.fp.Add(word)
	return index, true
}

// Load reads newline-separated words from r. Blank lines are skipped and a
// trailing carriage return is stripped from every line.
func (d *Dictionary) Load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxWordLength)
	for sc.Scan() {
		d.Add(strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("load words: %w", ErrWordTooLong)
		}
		return fmt.Errorf("load words: %w", err)
	}
	return nil
}

// LoadFile loads the word list at path.
func (d *Dictionary) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	before := len(d.words)
	if err := d.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	d.logger.Debug("word list loaded",
		"path", path,
		"words", len(d.words)-before,
		"states", d.auto.NumStates(),
	)
	return nil
}

// WordListFiles returns the files matching a doublestar pattern such as
// "lists/**/*.txt", in lexical path order. A pattern without glob
// metacharacters names a single file.
func WordListFiles(pattern string) ([]string, error) {
	base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
	matches, err := doublestar.Glob(os.DirFS(base), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoWordLists, pattern)
	}
	sort.Strings(matches)
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(base, filepath.FromSlash(m))
	}
	return paths, nil
}

// LoadGlob loads every file matching pattern. See WordListFiles.
func (d *Dictionary) LoadGlob(pattern string) error {
	paths, err := WordListFiles(pattern)
	if err != nil {
		return err
	}
	return d.LoadFiles(paths)
}

// LoadFiles loads the word lists at paths in order.
func (d *Dictionary) LoadFiles(paths []string) error {
	for _, p := range paths {
		if err := d.LoadFile(p); err != nil {
			return err
		}
	}
	return nil
}

// ContainedWords returns the dictionary words occurring as substrings of
// sequence, in load order and without duplicates.
func (d *Dictionary) ContainedWords(sequence string) []string {
	indices := d.Match(sequence)
	words := make([]string, len(indices))
	for i, idx := range indices {
		words[i] = d.Word(idx)
	}
	return words
}

// Match returns the sorted, deduplicated indices of the words occurring in
// sequence. Each call scans with its own cursor.
func (d *Dictionary) Match(sequence string) []int {
	sequence = d.normalizer.Normalize(sequence)
	found := d.auto.NewCursor().ScanWithRecovery(sequence)
	sort.Ints(found)
	return compact(found)
}

func compact(sorted []int) []int {
	if len(sorted) == 0 {
		return nil
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of words.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Word returns the word with the given index.
func (d *Dictionary) Word(index int) string {
	return d.words[index]
}

// Words returns a copy of the word list in index order.
func (d *Dictionary) Words() []string {
	return append([]string(nil), d.words...)
}

// Normalizer returns the normalizer applied to words and queries.
func (d *Dictionary) Normalizer() analysis.Normalizer {
	return d.normalizer
}

// Automaton returns the underlying automaton. Callers must not merge into it.
func (d *Dictionary) Automaton() *automaton.Automaton {
	return d.auto
}

// Fingerprint identifies the normalized word list.
func (d *Dictionary) Fingerprint() storage.Fingerprint {
	return d.fp.Sum()
}

// Dump writes the automaton's diagnostic rendering to w.
func (d *Dictionary) Dump(w io.Writer) error {
	return d.auto.Dump(w)
}

// Stats summarizes a dictionary.
type Stats struct {
	Words       int                 `json:"words"`
	States      int                 `json:"states"`
	Transitions int                 `json:"transitions"`
	Normalizer  string              `json:"normalizer"`
	Fingerprint storage.Fingerprint `json:"fingerprint"`
}

// Stats returns size figures for the dictionary.
func (d *Dictionary) Stats() Stats {
	return Stats{
		Words:       len(d.words),
		States:      d.auto.NumStates(),
		Transitions: d.auto.NumTransitions(),
		Normalizer:  d.normalizer.Name(),
		Fingerprint: d.Fingerprint(),
	}
}
