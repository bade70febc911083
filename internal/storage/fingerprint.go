package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const (
	// FingerprintPrefix is the prefix of every formatted fingerprint.
	FingerprintPrefix = "xxh64:"

	// fingerprintBufSize is the buffer size for streaming fingerprints.
	fingerprintBufSize = 32 * 1024 // 32KB
)

// Fingerprint identifies the content of a word list or dump: an xxhash64
// digest rendered as "xxh64:" followed by 16 hex digits. It detects changed
// input; it is not a cryptographic checksum.
type Fingerprint string

var ErrFingerprintMismatch = errors.New("fingerprint mismatch")

// bufPool pools 32KB buffers for streaming fingerprint computation.
var bufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, fingerprintBufSize)
		return &buf
	},
}

// ComputeFingerprint hashes a byte slice.
func ComputeFingerprint(data []byte) Fingerprint {
	return FormatFingerprint(xxhash.Sum64(data))
}

// ComputeFileFingerprint opens a file and hashes its content.
func ComputeFileFingerprint(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("compute file fingerprint %s: %w", path, err)
	}
	defer f.Close()

	bufPtr := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufPtr)

	return ComputeReaderFingerprint(f, *bufPtr)
}

// ComputeReaderFingerprint hashes everything read from r.
// If buf is nil, a default 32KB buffer is allocated.
func ComputeReaderFingerprint(r io.Reader, buf []byte) (Fingerprint, error) {
	h := xxhash.New()
	if buf == nil {
		buf = make([]byte, fingerprintBufSize)
	}
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("compute reader fingerprint: %w", err)
	}
	return FormatFingerprint(h.Sum64()), nil
}

// VerifyFileFingerprint checks that a file still has the expected content.
func VerifyFileFingerprint(path string, expected Fingerprint) error {
	actual, err := ComputeFileFingerprint(path)
	if err != nil {
		return err
	}
	if actual != expected {
		return fmt.Errorf("%w: file %s expected %s got %s", ErrFingerprintMismatch, path, expected, actual)
	}
	return nil
}

// FormatFingerprint renders a raw digest.
func FormatFingerprint(sum uint64) Fingerprint {
	return Fingerprint(fmt.Sprintf("%s%016x", FingerprintPrefix, sum))
}

// Fingerprinter accumulates a fingerprint over a sequence of words. Each word
// is terminated by a newline, so ["ab","c"] and ["a","bc"] differ.
type Fingerprinter struct {
	d *xxhash.Digest
}

// NewFingerprinter creates an empty Fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{d: xxhash.New()}
}

// Add feeds one word.
func (f *Fingerprinter) Add(word string) {
	_, _ = f.d.WriteString(word)
	_, _ = f.d.Write([]byte{'\n'})
}

// Sum returns the fingerprint of all words added so far.
func (f *Fingerprinter) Sum() Fingerprint {
	return FormatFingerprint(f.d.Sum64())
}
