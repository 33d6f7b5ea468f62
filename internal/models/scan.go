package models

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ScanRecord describes one completed scrape run.
type ScanRecord struct {
	ID          string        // UUID assigned when the run starts
	Root        string        // Resolved root directory
	Mode        MatchMode     // Predicate used for the run
	OutputFile  string        // Output target, empty when printed to stdout
	Files       []string      // Result Set in traversal order
	Skipped     int           // Entries skipped because of access errors
	Fingerprint string        // Hex xxhash64 of the Result Set
	StartedAt   time.Time     // When traversal began
	Duration    time.Duration // Wall time of the traversal
	Host        string        // Machine the scan ran on
}

// Matches returns the number of files in the Result Set.
func (r *ScanRecord) Matches() int {
	return len(r.Files)
}

// Fingerprint hashes the Result Set in order. Two runs produce the same
// fingerprint only when they found the same paths in the same order.
func Fingerprint(files []string) string {
	d := xxhash.New()
	for _, f := range files {
		d.WriteString(f)
		d.WriteString("\n")
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
