package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/omencyber/steve/internal/config"
	"github.com/omencyber/steve/internal/history"
	"github.com/omencyber/steve/internal/logger"
	"github.com/omencyber/steve/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeExtensionToStdout(t *testing.T) {
	setupHome(t)
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"a.db":     []byte("x"),
		"b.txt":    []byte("x"),
		"sub/c.db": []byte("x"),
		"sub/d.DB": []byte("x"),
	})

	stdout, stderr, err := executeCommand(t, nil, "scrape", "-d", root, "-t", "db")
	require.NoError(t, err)

	want := filepath.Join(root, "a.db") + "\n" + filepath.Join(root, "sub", "c.db") + "\n"
	assert.Equal(t, want, stdout)
	assert.Contains(t, stderr, "Scanning "+root+" for extension .db")
	assert.Contains(t, stderr, "=== Scan Summary ===")
	assert.Contains(t, stderr, "Matched: 2")
}

func TestScrapeSEGBToOutputFile(t *testing.T) {
	setupHome(t)
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{
		"biome/stream": segbFile(),
		"short":        []byte("SEGB"),
		"other":        make([]byte, 40),
	})
	outPath := filepath.Join(t.TempDir(), "segb.txt")

	stdout, _, err := executeCommand(t, nil, "scrape", "-d", root, "-t", "segb", "-o", outPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "biome", "stream")+"\n", string(data))
}

func TestScrapeEmptyResultWritesEmptyFile(t *testing.T) {
	setupHome(t)
	root := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "none.txt")

	_, _, err := executeCommand(t, nil, "scrape", "-d", root, "-t", "plist", "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestScrapeInvalidRoot(t *testing.T) {
	setupHome(t)
	missing := filepath.Join(t.TempDir(), "missing")
	outPath := filepath.Join(t.TempDir(), "out.txt")

	stdout, _, err := executeCommand(t, nil, "scrape", "-d", missing, "-t", "db", "-o", outPath)
	require.Error(t, err)
	assert.True(t, scraper.IsInvalidRoot(err))
	assert.Empty(t, stdout)
	assert.NoFileExists(t, outPath)
}

func TestScrapeInvalidFileType(t *testing.T) {
	setupHome(t)
	outPath := filepath.Join(t.TempDir(), "out.txt")

	_, _, err := executeCommand(t, nil, "scrape", "-d", t.TempDir(), "-t", "exe", "-o", outPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file type")
	assert.NoFileExists(t, outPath)
}

func TestScrapeOutputFileInMissingDirectory(t *testing.T) {
	setupHome(t)
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{"a.db": []byte("x")})
	base := t.TempDir()
	outPath := filepath.Join(base, "no", "such", "dir", "out.txt")

	_, _, err := executeCommand(t, nil, "scrape", "-d", root, "-t", "db", "-o", outPath, "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output directory")
	assert.NoDirExists(t, filepath.Join(base, "no"))
}

func TestScrapeFileTypeIsExact(t *testing.T) {
	setupHome(t)
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{"X.DB": []byte("x")})

	for _, ft := range []string{"DB", "Segb", " db"} {
		stdout, _, err := executeCommand(t, nil, "scrape", "-d", root, "-t", ft, "--quiet")
		require.Error(t, err, "file type %q", ft)
		assert.Contains(t, err.Error(), "invalid file type")
		assert.Empty(t, stdout)
	}
}

func TestScrapeRequiresFlags(t *testing.T) {
	setupHome(t)

	_, _, err := executeCommand(t, nil, "scrape", "-t", "db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestScrapeQuietKeepsStderrClean(t *testing.T) {
	setupHome(t)
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{"a.ips": []byte("x")})

	stdout, stderr, err := executeCommand(t, nil, "scrape", "-d", root, "-t", "ips", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.ips")+"\n", stdout)
	assert.Empty(t, stderr)
}

func TestScrapeRecordsHistory(t *testing.T) {
	home := setupHome(t)
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{"one.plist": []byte("x"), "two.plist": []byte("y")})

	_, stderr, err := executeCommand(t, nil, "scrape", "-d", root, "-t", "plist")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Scan ID: ")

	store := openTestHistory(t, home)
	scans, err := store.ListScans(context.Background(), history.Filter{})
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, root, scans[0].Root)
	assert.Equal(t, 2, scans[0].Matches)
	assert.Equal(t, "plist", scans[0].Mode.FileType())

	rec, err := store.GetScan(context.Background(), scans[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "one.plist"), filepath.Join(root, "two.plist")}, rec.Files)
}

func TestScrapeNoHistory(t *testing.T) {
	home := setupHome(t)
	root := t.TempDir()

	_, stderr, err := executeCommand(t, nil, "scrape", "-d", root, "-t", "db", "--no-history")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Scan ID")
	assert.NoFileExists(t, filepath.Join(home, "history", "scans.db"))
}

func TestScrapeHistoryDisabledByConfig(t *testing.T) {
	home := setupHome(t)
	cfgPath := writeConfig(t, "history:\n  enabled: false\n")

	_, _, err := executeCommand(t, nil, "scrape", "-d", t.TempDir(), "-t", "db", "--config", cfgPath)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(home, "history", "scans.db"))
}

func TestScrapeWritesRunLog(t *testing.T) {
	setupHome(t)
	root := t.TempDir()
	logDir := filepath.Join(t.TempDir(), "logs")
	writeTree(t, root, map[string][]byte{"a.db": []byte("x")})

	_, _, err := executeCommand(t, nil, "scrape", "-d", root, "-t", "db", "--log-dir", logDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== SCAN SUMMARY ===")
	assert.Contains(t, string(data), "Matched:      1")
}

func TestSessionScrapeRecord(t *testing.T) {
	setupHome(t)
	root := t.TempDir()
	writeTree(t, root, map[string][]byte{"x.db": []byte("x")})

	cfg := config.DefaultConfig()
	cfg.History.Enabled = false
	s := &session{cfg: cfg, log: logger.NewNoOpLogger()}

	rec, err := s.scrape(context.Background(), ScrapeParams{Directory: root, FileType: "db"}, io.Discard)
	require.NoError(t, err)

	assert.Empty(t, rec.ID)
	assert.Equal(t, root, rec.Root)
	assert.Equal(t, []string{filepath.Join(root, "x.db")}, rec.Files)
	assert.Equal(t, 0, rec.Skipped)
	assert.Len(t, rec.Fingerprint, 16)
	assert.False(t, rec.StartedAt.IsZero())
}
