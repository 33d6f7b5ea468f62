package scraper

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/omencyber/steve/internal/models"
)

// Logger receives scan diagnostics. *logger.ConsoleLogger satisfies it.
type Logger interface {
	LogDebug(message string)
	LogSkip(err error)
}

// Options configures a scan.
type Options struct {
	// Logger receives skipped entries through LogSkip and ignored entries at DEBUG.
	// Nil discards them; they are still collected in Result.Errors.
	Logger Logger
}

// Result is the outcome of a scan over a valid root.
type Result struct {
	// Root is the resolved root directory.
	Root string
	// Files holds matching paths in traversal order.
	Files []string
	// Errors holds one *EntryAccessError per skipped directory or file.
	Errors []error
	// Scanned counts candidate files given to the predicate.
	Scanned int
	// StartedAt and Duration time the traversal.
	StartedAt time.Time
	Duration  time.Duration
}

// Skipped returns the number of entries skipped because of access errors.
func (r *Result) Skipped() int {
	return len(r.Errors)
}

// Scan walks root and collects every regular file that matches mode.
// Only an invalid root or an unusable mode returns an error; per-entry
// failures are collected in Result.Errors.
func Scan(root string, mode models.MatchMode, opts Options) (*Result, error) {
	resolved, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	matcher, err := NewMatcher(mode)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}

	result := &Result{
		Root:      resolved,
		Files:     make([]string, 0),
		Errors:    make([]error, 0),
		StartedAt: time.Now(),
	}

	skip := func(err error) {
		result.Errors = append(result.Errors, err)
		log.LogSkip(err)
	}

	walker := &Walker{
		OnError: skip,
		OnIgnored: func(path string, d fs.DirEntry) {
			log.LogDebug(fmt.Sprintf("Ignoring %s (%s)", path, d.Type()))
		},
	}

	walker.Walk(resolved, func(path string, d fs.DirEntry) {
		result.Scanned++
		matched, err := matcher.Match(path, d)
		if err != nil {
			skip(err)
			return
		}
		if matched {
			result.Files = append(result.Files, path)
		}
	})

	result.Duration = time.Since(result.StartedAt)
	return result, nil
}

// FindFiles returns every file under root whose name ends in "." + ext.
func FindFiles(root, ext string, opts Options) (*Result, error) {
	return Scan(root, models.ExtensionMode(ext), opts)
}

// FindSEGBFiles returns every file under root that starts with the SEGB signature.
func FindSEGBFiles(root string, opts Options) (*Result, error) {
	return Scan(root, models.SEGBMode(), opts)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogSkip(error) {}
