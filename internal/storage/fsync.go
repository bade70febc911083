package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// FsyncDir flushes the directory entries of path to disk.
func FsyncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fsync dir %s: %w", path, err)
	}
	syncErr := d.Sync()
	closeErr := d.Close()
	if syncErr != nil {
		return fmt.Errorf("fsync dir %s: %w", path, syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("fsync dir %s: %w", path, closeErr)
	}
	return nil
}

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirPerm)
}

// AtomicWriteFile replaces finalPath with data so that readers see either the
// old content or the new one, never a partial file. The data is staged in a
// temp file inside tmpDir (the directory of finalPath when empty), which must
// be on the same filesystem.
func AtomicWriteFile(finalPath string, data []byte, tmpDir string) (err error) {
	if tmpDir == "" {
		tmpDir = filepath.Dir(finalPath)
	}
	tmp, err := os.CreateTemp(tmpDir, ".fastdict-*")
	if err != nil {
		return fmt.Errorf("atomic write %s: %w", finalPath, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err := stage(tmp, data); err != nil {
		return fmt.Errorf("atomic write %s: %w", finalPath, err)
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return fmt.Errorf("atomic write %s: %w", finalPath, err)
	}
	return FsyncDir(filepath.Dir(finalPath))
}

// stage writes data to f, makes it durable and closes f.
func stage(f *os.File, data []byte) error {
	_, err := f.Write(data)
	if err == nil {
		err = f.Chmod(FilePerm)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteFileVerified atomically writes data to path, creating missing parent
// directories, then reads the file back and checks its fingerprint.
func WriteFileVerified(path string, data []byte) (Fingerprint, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return "", fmt.Errorf("create parent of %s: %w", path, err)
	}
	if err := AtomicWriteFile(path, data, ""); err != nil {
		return "", err
	}
	fp := ComputeFingerprint(data)
	if err := VerifyFileFingerprint(path, fp); err != nil {
		return "", err
	}
	return fp, nil
}
