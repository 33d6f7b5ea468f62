// Package sink emits scan results: one path per line to a writer, or to a
// file replaced atomically under an exclusive lock.
package sink

import (
	"bufio"
	"fmt"
	"io"
)

// Format renders files as newline-terminated lines, in order, unmodified.
func Format(files []string) []byte {
	size := 0
	for _, f := range files {
		size += len(f) + 1
	}

	buf := make([]byte, 0, size)
	for _, f := range files {
		buf = append(buf, f...)
		buf = append(buf, '\n')
	}
	return buf
}

// Write prints each path followed by a newline to w.
func Write(w io.Writer, files []string) error {
	bw := bufio.NewWriter(w)
	for _, f := range files {
		if _, err := bw.WriteString(f); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// WriteFile replaces path with the newline-delimited result list. An empty
// list produces an empty file. A failed write leaves any previous file intact.
// The parent directory must exist, and a file another run is writing yields
// ErrLocked instead of waiting.
func WriteFile(path string, files []string) error {
	if err := TryLockAndWrite(path, Format(files)); err != nil {
		return fmt.Errorf("write output file %s: %w", path, err)
	}
	return nil
}

// Emit writes files to outputFile when it is set, otherwise to stdout.
func Emit(files []string, outputFile string, stdout io.Writer) error {
	if outputFile != "" {
		return WriteFile(outputFile, files)
	}
	return Write(stdout, files)
}
