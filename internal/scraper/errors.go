package scraper

import (
	"errors"
	"fmt"
)

// ErrInvalidRoot matches any *InvalidRootError via errors.Is.
var ErrInvalidRoot = errors.New("invalid directory path")

var errNotDirectory = errors.New("not a directory")

// InvalidRootError reports a scan root that does not exist or is not a directory.
// It is the only error that aborts a scan.
type InvalidRootError struct {
	Path string // Root as given by the caller
	Err  error  // Underlying stat error, or errNotDirectory
}

// Error implements the error interface for InvalidRootError.
func (e *InvalidRootError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid directory path %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid directory path %q", e.Path)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *InvalidRootError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInvalidRoot) match.
func (e *InvalidRootError) Is(target error) bool {
	return target == ErrInvalidRoot
}

// EntryAccessError reports a single directory or file the scan had to skip.
type EntryAccessError struct {
	Path string // Directory or file that failed
	Op   string // "list", "open" or "read"
	Err  error  // Underlying I/O error
}

// Error implements the error interface for EntryAccessError.
func (e *EntryAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *EntryAccessError) Unwrap() error {
	return e.Err
}

// IsInvalidRoot reports whether err is, or wraps, an *InvalidRootError.
func IsInvalidRoot(err error) bool {
	return errors.Is(err, ErrInvalidRoot)
}
