// Package scraper finds evidentiary files below a root directory.
//
// A scan has two cooperating parts. The traversal engine (Walker) enumerates
// every regular file reachable from the root using an explicit stack of
// pending directories, so deep trees never hit a recursion limit. The match
// predicate (Matcher) then decides per file whether it belongs in the result:
// either the filename ends in "." + extension, or the first HeaderLength
// bytes of the file can be read and begin with the ASCII magic "SEGB".
//
// # Ordering
//
// Files are reported in traversal order. Within one directory, entries are
// visited in name order; subdirectories are pushed onto the stack in name
// order and popped last-in first-out. The order is stable for a given tree
// but is not sorted.
//
// # Symlinks
//
// Symlinks are never followed. A symlinked directory is not descended into
// and a symlink to a file is not a candidate, so no file is counted twice and
// cyclic links cannot trap the walk. Devices, sockets and FIFOs are ignored
// as well; opening a FIFO for the signature check would block.
//
// # Errors
//
// Only an invalid root (missing, or not a directory) fails a scan, and it
// fails before anything is read. A directory that cannot be listed or a file
// that cannot be opened produces an *EntryAccessError that is collected in
// Result.Errors and logged; the scan carries on with the next entry. A file
// shorter than the header window is a plain non-match, not an error.
//
// Basic usage:
//
//	result, err := scraper.FindSEGBFiles("~/Library/Biome", scraper.Options{})
//	if err != nil {
//	    return err // *InvalidRootError
//	}
//	for _, path := range result.Files {
//	    fmt.Println(path)
//	}
package scraper
