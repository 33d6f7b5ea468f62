// Package browser runs the external browser forensics tool through a typed
// request and response instead of a shell command line.
package browser

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Format is an output format accepted by the browser forensics tool.
type Format string

const (
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
	FormatJSONL  Format = "jsonl"
)

// Formats lists every accepted output format.
var Formats = []Format{FormatXLSX, FormatSQLite, FormatJSONL}

// ParseFormat normalizes s and checks it against Formats.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q, must be one of: xlsx, sqlite, jsonl", s)
}

// Request holds the parameters of one browser forensics run.
type Request struct {
	// InputPath is the browser profile directory to analyse (required).
	InputPath string

	// OutputName is the output file name without extension (required).
	OutputName string

	// Format selects the output format (required).
	Format Format
}

// Validate checks the request before anything is executed.
func (r Request) Validate() error {
	if strings.TrimSpace(r.InputPath) == "" {
		return errors.New("input path is required")
	}
	if _, err := os.Stat(r.InputPath); err != nil {
		return fmt.Errorf("input path %s: %w", r.InputPath, err)
	}
	if strings.TrimSpace(r.OutputName) == "" {
		return errors.New("output name is required")
	}
	if _, err := ParseFormat(string(r.Format)); err != nil {
		return err
	}
	return nil
}

// Args returns the tool flags for this request.
func (r Request) Args() []string {
	return []string{"-i", r.InputPath, "-o", r.OutputName, "-f", string(r.Format)}
}
