package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/omencyber/steve/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newRecord(root string, started time.Time, files ...string) *models.ScanRecord {
	return &models.ScanRecord{
		Root:      root,
		Mode:      models.ExtensionMode("db"),
		Files:     files,
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Host:      "examiner-01",
	}
}

func TestRecordAndGetScan(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	started := time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)
	rec := newRecord("/Users/alice/Library", started, "/Users/alice/Library/z.db", "/Users/alice/Library/a.db")
	rec.OutputFile = "/cases/1/out.txt"
	rec.Skipped = 2

	require.NoError(t, store.RecordScan(ctx, rec))

	_, err := uuid.Parse(rec.ID)
	require.NoError(t, err, "RecordScan assigns a UUID")
	assert.Equal(t, models.Fingerprint(rec.Files), rec.Fingerprint)

	got, err := store.GetScan(ctx, rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Root, got.Root)
	assert.Equal(t, rec.Mode, got.Mode)
	assert.Equal(t, rec.OutputFile, got.OutputFile)
	assert.Equal(t, []string{"/Users/alice/Library/z.db", "/Users/alice/Library/a.db"}, got.Files, "traversal order is kept")
	assert.Equal(t, 2, got.Skipped)
	assert.Equal(t, rec.Fingerprint, got.Fingerprint)
	assert.True(t, started.Equal(got.StartedAt), "started_at round trip: %v vs %v", started, got.StartedAt)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Equal(t, "examiner-01", got.Host)
}

func TestRecordScanSEGBModeAndEmptyResult(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	rec := &models.ScanRecord{Root: "/private/var/db/biome", Mode: models.SEGBMode(), StartedAt: time.Now()}
	require.NoError(t, store.RecordScan(ctx, rec))

	got, err := store.GetScan(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SEGBMode(), got.Mode)
	assert.Empty(t, got.Files)
	assert.NotNil(t, got.Files)
}

func TestRecordScanKeepsGivenID(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	rec := newRecord("/r", time.Now(), "/r/a.db")
	rec.ID = "11111111-2222-3333-4444-555555555555"
	require.NoError(t, store.RecordScan(ctx, rec))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", rec.ID)

	// Same ID twice violates the primary key and leaves no partial rows.
	dup := newRecord("/r", time.Now(), "/r/b.db", "/r/c.db")
	dup.ID = rec.ID
	require.Error(t, store.RecordScan(ctx, dup))

	got, err := store.GetScan(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/r/a.db"}, got.Files)
}

func TestGetScanByPrefix(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	a := newRecord("/a", time.Now(), "/a/1.db")
	a.ID = "abcd1111-0000-0000-0000-000000000000"
	b := newRecord("/b", time.Now(), "/b/1.db")
	b.ID = "abcd2222-0000-0000-0000-000000000000"
	require.NoError(t, store.RecordScan(ctx, a))
	require.NoError(t, store.RecordScan(ctx, b))

	got, err := store.GetScan(ctx, "abcd1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = store.GetScan(ctx, "abcd")
	assert.True(t, errors.Is(err, ErrAmbiguousID), "got %v", err)

	_, err = store.GetScan(ctx, "abc")
	assert.True(t, errors.Is(err, ErrScanNotFound), "short prefixes are not resolved: %v", err)

	_, err = store.GetScan(ctx, "ffff")
	assert.True(t, errors.Is(err, ErrScanNotFound), "got %v", err)

	_, err = store.GetScan(ctx, "abcd%")
	assert.True(t, errors.Is(err, ErrScanNotFound), "wildcards are literal: %v", err)
}

func TestListScans(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	roots := []string{
		"/Users/alice/Library/Biome",
		"/Users/bob/Library/Biome",
		"/Users/alice/Library/Preferences",
		"/private/var/db",
	}
	for i, root := range roots {
		rec := newRecord(root, base.Add(time.Duration(i)*time.Hour), root+"/x.db")
		require.NoError(t, store.RecordScan(ctx, rec))
	}

	tests := []struct {
		name  string
		f     Filter
		roots []string
	}{
		{
			name:  "all newest first",
			f:     Filter{},
			roots: []string{"/private/var/db", "/Users/alice/Library/Preferences", "/Users/bob/Library/Biome", "/Users/alice/Library/Biome"},
		},
		{
			name:  "limit",
			f:     Filter{Limit: 2},
			roots: []string{"/private/var/db", "/Users/alice/Library/Preferences"},
		},
		{
			name:  "single segment wildcard",
			f:     Filter{RootPattern: "/Users/*/Library/Biome"},
			roots: []string{"/Users/bob/Library/Biome", "/Users/alice/Library/Biome"},
		},
		{
			name:  "star does not cross separators",
			f:     Filter{RootPattern: "/Users/*"},
			roots: nil,
		},
		{
			name:  "super wildcard",
			f:     Filter{RootPattern: "/Users/alice/**"},
			roots: []string{"/Users/alice/Library/Preferences", "/Users/alice/Library/Biome"},
		},
		{
			name:  "limit applies after filtering",
			f:     Filter{RootPattern: "/Users/**", Limit: 1},
			roots: []string{"/Users/alice/Library/Preferences"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListScans(ctx, tt.f)
			require.NoError(t, err)

			var roots []string
			for _, s := range got {
				roots = append(roots, s.Root)
				assert.Equal(t, 1, s.Matches)
			}
			assert.Equal(t, tt.roots, roots)
		})
	}
}

func TestListScansInvalidPattern(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.ListScans(context.Background(), Filter{RootPattern: "/Users/[alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid root pattern")
}

func TestStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "scans.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordScan(ctx, newRecord(fmt.Sprintf("/r%d", i), time.Now(), "/x")))
	}
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.CountScans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
