package scraper

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/omencyber/steve/internal/models"
)

// Matcher decides whether a candidate file belongs in the Result Set.
// A non-nil error means the file could not be checked; the caller records
// it and treats the file as a non-match.
type Matcher interface {
	Match(path string, d fs.DirEntry) (bool, error)
}

// ExtensionMatcher matches filenames ending in "." + Extension.
// Comparison is exact and case-sensitive; file content is never read.
type ExtensionMatcher struct {
	Extension string
}

// Match implements Matcher.
func (m ExtensionMatcher) Match(_ string, d fs.DirEntry) (bool, error) {
	return MatchesExtension(d.Name(), m.Extension), nil
}

// MatchesExtension reports whether name ends with "." + ext.
// "notes.db" and "a.b.db" match "db"; "db" and "notesdb" do not.
func MatchesExtension(name, ext string) bool {
	return strings.HasSuffix(name, "."+ext)
}

// SEGBMatcher matches files whose header carries the SEGB signature.
type SEGBMatcher struct{}

// Match implements Matcher.
func (SEGBMatcher) Match(path string, _ fs.DirEntry) (bool, error) {
	return FileMatchesSEGB(path)
}

// NewMatcher returns the Matcher for mode.
func NewMatcher(mode models.MatchMode) (Matcher, error) {
	switch mode.Kind {
	case models.KindSEGB:
		return SEGBMatcher{}, nil
	case models.KindExtension:
		if mode.Extension == "" {
			return nil, errors.New("extension must not be empty")
		}
		return ExtensionMatcher{Extension: mode.Extension}, nil
	default:
		return nil, fmt.Errorf("unsupported match kind %s", mode.Kind)
	}
}
