package scraper

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ResolveRoot validates a scan root and expands a leading "~" to the user's
// home directory. It returns *InvalidRootError when the path is empty, does
// not exist, or is not a directory.
func ResolveRoot(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", &InvalidRootError{Path: dir, Err: errors.New("empty path")}
	}

	expanded, err := expandUser(dir)
	if err != nil {
		return "", &InvalidRootError{Path: dir, Err: err}
	}

	info, err := os.Stat(expanded)
	if err != nil {
		return "", &InvalidRootError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return "", &InvalidRootError{Path: dir, Err: errNotDirectory}
	}

	return expanded, nil
}

// expandUser replaces "~" and "~/..." with the home directory.
// "~user" forms are returned unchanged.
func expandUser(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// Walker enumerates regular files below a root, depth first, using an
// explicit stack of pending directories. Each directory is listed once.
type Walker struct {
	// ReadDir lists a directory. Defaults to os.ReadDir.
	ReadDir func(name string) ([]fs.DirEntry, error)

	// OnError receives an *EntryAccessError for every directory that could
	// not be listed. The directory's subtree is skipped. Nil drops the error.
	OnError func(err error)

	// OnIgnored receives entries that are neither regular files nor
	// directories (symlinks, devices, sockets, FIFOs). Nil drops them.
	OnIgnored func(path string, d fs.DirEntry)
}

// Walk calls visit for every regular file reachable from root. The root is
// not validated here; use ResolveRoot first.
func (w *Walker) Walk(root string, visit func(path string, d fs.DirEntry)) {
	readDir := w.ReadDir
	if readDir == nil {
		readDir = os.ReadDir
	}

	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := readDir(dir)
		if err != nil {
			// Partial listings are dropped with the rest of the subtree.
			if w.OnError != nil {
				w.OnError(&EntryAccessError{Path: dir, Op: "list", Err: err})
			}
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch {
			case entry.Type().IsRegular():
				visit(path, entry)
			case entry.IsDir():
				stack = append(stack, path)
			default:
				if w.OnIgnored != nil {
					w.OnIgnored(path, entry)
				}
			}
		}
	}
}
