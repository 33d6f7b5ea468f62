package cmd

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/omencyber/steve/internal/history"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a fresh command tree with args and captures both streams.
func executeCommand(t *testing.T, stdin io.Reader, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)

	err = root.Execute()
	return out.String(), errOut.String(), err
}

// setupHome points STEVE_HOME at a fresh directory for the test.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("STEVE_HOME", home)
	return home
}

// writeConfig writes a config.yaml with the given body and returns its path.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// writeTree creates files relative to root.
func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, content, 0644))
	}
}

// segbFile returns a 32-byte header that starts with the SEGB signature.
func segbFile() []byte {
	data := make([]byte, 32)
	copy(data, "SEGB")
	return data
}

// openTestHistory opens the history database under home.
func openTestHistory(t *testing.T, home string) *history.Store {
	t.Helper()
	store, err := history.NewStore(filepath.Join(home, "history", "scans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}
