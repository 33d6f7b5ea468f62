package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports an output file that another process is already writing.
var ErrLocked = errors.New("output file is locked by another process")

// FileLock wraps a flock file lock guarding one output file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock backed by the file at path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking.
// Returns false if another process holds it.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// requireParentDir fails when the directory that would hold path is missing.
// Output paths are never created implicitly, so a mistyped path is an error.
func requireParentDir(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %s: not a directory", dir)
	}
	return nil
}

// AtomicWrite replaces path with data through a temp file beside it and a
// rename, so readers see either the old content or the new content. The
// parent directory must already exist.
func AtomicWrite(path string, data []byte) error {
	if err := requireParentDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".steve-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	renamed := false
	defer func() {
		if !renamed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// CreateTemp uses 0600.
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	renamed = true
	return nil
}

// LockAndWrite waits for <path>.lock, then atomically writes path. The lock
// file is removed afterwards so no stray artefact is left beside the output.
func LockAndWrite(path string, data []byte) error {
	if err := requireParentDir(path); err != nil {
		return err
	}

	lockPath := path + ".lock"
	lock := NewFileLock(lockPath)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer release(lock, lockPath)

	return AtomicWrite(path, data)
}

// TryLockAndWrite is LockAndWrite without waiting: when another process holds
// <path>.lock it returns ErrLocked and leaves path untouched.
func TryLockAndWrite(path string, data []byte) error {
	if err := requireParentDir(path); err != nil {
		return err
	}

	lockPath := path + ".lock"
	lock := NewFileLock(lockPath)
	acquired, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: %s", ErrLocked, path)
	}
	defer release(lock, lockPath)

	return AtomicWrite(path, data)
}

func release(lock *FileLock, lockPath string) {
	lock.Unlock()
	os.Remove(lockPath)
}
