// Package history keeps an audit trail of scrape runs in SQLite so an
// examiner can list past scans, re-read their result sets and compare
// fingerprints across runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/omencyber/steve/internal/models"
)

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// minPrefixLen is the shortest ID prefix GetScan will resolve.
const minPrefixLen = 4

var (
	// ErrScanNotFound is returned when no scan matches an ID or prefix.
	ErrScanNotFound = errors.New("scan not found")

	// ErrAmbiguousID is returned when an ID prefix matches several scans.
	ErrAmbiguousID = errors.New("ambiguous scan id prefix")
)

// Store manages the SQLite scan history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// Summary is a scan without its file list, as returned by ListScans.
type Summary struct {
	ID          string
	Root        string
	Mode        models.MatchMode
	OutputFile  string
	Matches     int
	Skipped     int
	Fingerprint string
	StartedAt   time.Time
	Duration    time.Duration
	Host        string
}

// Filter narrows ListScans.
type Filter struct {
	// RootPattern is a glob matched against the scan root, with "/" as the
	// separator: "*" stays within one path segment, "**" crosses segments.
	RootPattern string

	// Limit caps the number of results after filtering. Zero means no limit.
	Limit int
}

// NewStore opens (creating if needed) the database at dbPath and applies
// pending migrations. ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordScan stores rec and its file list in one transaction. A missing ID
// is filled with a new UUID and a missing fingerprint is computed.
func (s *Store) RecordScan(ctx context.Context, rec *models.ScanRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Fingerprint == "" {
		rec.Fingerprint = models.Fingerprint(rec.Files)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO scans
		(id, root, mode_kind, extension, output_file, match_count, skipped, fingerprint, started_at, duration_ms, host)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Root,
		rec.Mode.Kind.String(),
		rec.Mode.Extension,
		rec.OutputFile,
		len(rec.Files),
		rec.Skipped,
		rec.Fingerprint,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.Duration.Milliseconds(),
		rec.Host,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scan_files (scan_id, position, path) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare file insert: %w", err)
	}
	defer stmt.Close()

	for i, path := range rec.Files {
		if _, err := stmt.ExecContext(ctx, rec.ID, i, path); err != nil {
			return fmt.Errorf("insert file %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scan: %w", err)
	}
	return nil
}

// GetScan loads a scan and its files in traversal order. id may be a unique
// prefix of at least four characters.
func (s *Store) GetScan(ctx context.Context, id string) (*models.ScanRecord, error) {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM scans WHERE id = ?`, fullID)
	sum, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrScanNotFound, id)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path FROM scan_files WHERE scan_id = ? ORDER BY position ASC`, fullID)
	if err != nil {
		return nil, fmt.Errorf("query scan files: %w", err)
	}
	defer rows.Close()

	files := make([]string, 0, sum.Matches)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		files = append(files, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan files: %w", err)
	}

	return &models.ScanRecord{
		ID:          sum.ID,
		Root:        sum.Root,
		Mode:        sum.Mode,
		OutputFile:  sum.OutputFile,
		Files:       files,
		Skipped:     sum.Skipped,
		Fingerprint: sum.Fingerprint,
		StartedAt:   sum.StartedAt,
		Duration:    sum.Duration,
		Host:        sum.Host,
	}, nil
}

func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	var exact int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans WHERE id = ?`, id).Scan(&exact); err != nil {
		return "", fmt.Errorf("look up scan: %w", err)
	}
	if exact == 1 {
		return id, nil
	}
	if len(id) < minPrefixLen {
		return "", fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}

	// substr avoids LIKE treating "_" or "%" in user input as wildcards.
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM scans WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return "", fmt.Errorf("look up scan prefix: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", fmt.Errorf("scan id row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate ids: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrScanNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// ListScans returns scans newest first, filtered by f.
func (s *Store) ListScans(ctx context.Context, f Filter) ([]Summary, error) {
	var matcher glob.Glob
	if f.RootPattern != "" {
		g, err := glob.Compile(f.RootPattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid root pattern %q: %w", f.RootPattern, err)
		}
		matcher = g
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+summaryColumns+` FROM scans ORDER BY started_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		if matcher != nil && !matcher.Match(sum.Root) {
			continue
		}
		out = append(out, *sum)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}

	return out, nil
}

// CountScans returns the number of recorded scans.
func (s *Store) CountScans(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return n, nil
}

const summaryColumns = `id, root, mode_kind, extension, output_file, match_count, skipped, fingerprint, started_at, duration_ms, host`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*Summary, error) {
	var (
		sum        Summary
		kind       string
		ext        sql.NullString
		output     sql.NullString
		startedAt  string
		durationMS int64
	)

	err := row.Scan(&sum.ID, &sum.Root, &kind, &ext, &output, &sum.Matches, &sum.Skipped,
		&sum.Fingerprint, &startedAt, &durationMS, &sum.Host)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}

	mode, err := modeFromColumns(kind, ext.String)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", sum.ID, err)
	}
	sum.Mode = mode
	sum.OutputFile = output.String

	started, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("scan %s: parse started_at: %w", sum.ID, err)
	}
	sum.StartedAt = started
	sum.Duration = time.Duration(durationMS) * time.Millisecond

	return &sum, nil
}

func modeFromColumns(kind, ext string) (models.MatchMode, error) {
	switch kind {
	case models.KindSEGB.String():
		return models.SEGBMode(), nil
	case models.KindExtension.String():
		return models.ExtensionMode(ext), nil
	default:
		return models.MatchMode{}, fmt.Errorf("unknown mode %q", kind)
	}
}
