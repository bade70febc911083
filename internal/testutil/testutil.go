package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FastDict/internal/dictionary"
)

// SampleWords is a small word list with a shared prefix ("cat", "car"), a
// disjoint branch ("dog") and a self-overlapping word ("ana").
var SampleWords = []string{"cat", "car", "dog", "ana"}

// WriteWordList writes words, one per line, to name inside dir and returns
// the full path.
func WriteWordList(t *testing.T, dir, name string, words []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	data := strings.Join(words, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
	return path
}

// NewDictionary builds a dictionary from words.
func NewDictionary(t *testing.T, words []string, opts ...dictionary.Option) *dictionary.Dictionary {
	t.Helper()
	d := dictionary.New(opts...)
	for _, w := range words {
		d.Add(w)
	}
	return d
}

// ContainsBrute returns, in list order, the distinct words that occur in
// sequence. It is the reference the automaton is checked against.
func ContainsBrute(words []string, sequence string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, w := range words {
		if w == "" || seen[w] {
			continue
		}
		if strings.Contains(sequence, w) {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// AssertFileExists checks that a file exists at the given path.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}
