package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFingerprint(t *testing.T) {
	data := []byte("hello")
	want := Fingerprint(fmt.Sprintf("xxh64:%016x", xxhash.Sum64(data)))
	assert.Equal(t, want, ComputeFingerprint(data))
}

func TestComputeFingerprint_Empty(t *testing.T) {
	// xxhash64 of empty input with seed 0.
	assert.Equal(t, Fingerprint("xxh64:ef46db3751d8e999"), ComputeFingerprint(nil))
}

func TestComputeFileFingerprint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	data := []byte("cat\ncar\ndog\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	got, err := ComputeFileFingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, ComputeFingerprint(data), got)
}

func TestComputeFileFingerprint_NotExists(t *testing.T) {
	_, err := ComputeFileFingerprint("/nonexistent/path/words.txt")
	assert.Error(t, err)
}

func TestComputeReaderFingerprint_LargeInput(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 20000) // larger than one buffer
	got, err := ComputeReaderFingerprint(bytes.NewReader(data), nil)
	require.NoError(t, err)
	assert.Equal(t, ComputeFingerprint(data), got)
}

func TestVerifyFileFingerprint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat\n"), 0644))

	fp, err := ComputeFileFingerprint(path)
	require.NoError(t, err)
	require.NoError(t, VerifyFileFingerprint(path, fp))

	require.NoError(t, os.WriteFile(path, []byte("cow\n"), 0644))
	assert.ErrorIs(t, VerifyFileFingerprint(path, fp), ErrFingerprintMismatch)
}

func TestFingerprinter(t *testing.T) {
	f := NewFingerprinter()
	f.Add("cat")
	f.Add("car")
	assert.Equal(t, ComputeFingerprint([]byte("cat\ncar\n")), f.Sum())

	a, b := NewFingerprinter(), NewFingerprinter()
	a.Add("ab")
	a.Add("c")
	b.Add("a")
	b.Add("bc")
	assert.NotEqual(t, a.Sum(), b.Sum())
	assert.True(t, strings.HasPrefix(string(a.Sum()), FingerprintPrefix))
}
