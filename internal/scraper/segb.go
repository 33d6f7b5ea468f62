package scraper

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// HeaderLength is the number of leading bytes that must be readable for a
// file to be considered for the SEGB signature.
const HeaderLength = 32

// Magic is the signature a SEGB file starts with.
const Magic = "SEGB"

// StreamMatchesSEGB reports whether the next HeaderLength bytes of rs can be
// read and start with Magic. The stream position is restored before return
// on every path, so the check can be repeated and does not consume input
// for later readers. A stream with fewer than HeaderLength bytes left is a
// non-match, not an error.
func StreamMatchesSEGB(rs io.ReadSeeker) (matched bool, err error) {
	offset, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, fmt.Errorf("get stream position: %w", err)
	}
	defer func() {
		if _, seekErr := rs.Seek(offset, io.SeekStart); seekErr != nil && err == nil {
			matched = false
			err = fmt.Errorf("restore stream position: %w", seekErr)
		}
	}()

	header := make([]byte, HeaderLength)
	if _, readErr := io.ReadFull(rs, header); readErr != nil {
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, fmt.Errorf("read header: %w", readErr)
	}

	return string(header[:len(Magic)]) == Magic, nil
}

// FileMatchesSEGB opens path and checks it with StreamMatchesSEGB.
// Failures are returned as *EntryAccessError.
func FileMatchesSEGB(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, &EntryAccessError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	matched, err := StreamMatchesSEGB(f)
	if err != nil {
		return false, &EntryAccessError{Path: path, Op: "read", Err: err}
	}
	return matched, nil
}
