package browser

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func validRequest(t *testing.T) Request {
	return Request{InputPath: t.TempDir(), OutputName: "chrome-report", Format: FormatJSONL}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "xlsx", want: FormatXLSX},
		{in: " SQLite ", want: FormatSQLite},
		{in: "JSONL", want: FormatJSONL},
		{in: "csv", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{name: "valid", req: Request{InputPath: dir, OutputName: "out", Format: FormatXLSX}},
		{name: "missing input", req: Request{OutputName: "out", Format: FormatXLSX}, wantErr: "input path is required"},
		{name: "input does not exist", req: Request{InputPath: filepath.Join(dir, "nope"), OutputName: "out", Format: FormatXLSX}, wantErr: "nope"},
		{name: "missing output", req: Request{InputPath: dir, OutputName: "  ", Format: FormatXLSX}, wantErr: "output name is required"},
		{name: "bad format", req: Request{InputPath: dir, OutputName: "out", Format: "pdf"}, wantErr: "invalid output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInvokePassesArgumentsWithoutShell(t *testing.T) {
	requireShell(t)

	// The profile path contains shell metacharacters that must arrive verbatim.
	profile := filepath.Join(t.TempDir(), "Profile 1; rm -rf $HOME")
	require.NoError(t, os.MkdirAll(profile, 0755))

	inv := &Invoker{Command: "sh", Args: []string{"-c", `printf '%s|' "$@"`, "tool"}}
	resp, err := inv.Invoke(context.Background(), Request{InputPath: profile, OutputName: "out", Format: FormatSQLite})
	require.NoError(t, err)

	assert.Equal(t, "-i|"+profile+"|-o|out|-f|sqlite|", resp.Stdout)
	assert.Equal(t, 0, resp.ExitCode)
	assert.Empty(t, resp.Stderr)
}

func TestInvokeNonZeroExit(t *testing.T) {
	requireShell(t)

	inv := &Invoker{Command: "sh", Args: []string{"-c", "echo partial; echo 'profile locked' >&2; exit 3", "tool"}}
	resp, err := inv.Invoke(context.Background(), validRequest(t))

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, 3, toolErr.ExitCode)
	assert.Contains(t, toolErr.Error(), "profile locked")

	require.NotNil(t, resp)
	assert.Equal(t, 3, resp.ExitCode)
	assert.Equal(t, "partial\n", resp.Stdout)
}

func TestInvokeTimeout(t *testing.T) {
	requireShell(t)

	inv := &Invoker{Command: "sh", Args: []string{"-c", "sleep 5", "tool"}, Timeout: 100 * time.Millisecond}
	_, err := inv.Invoke(context.Background(), validRequest(t))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestInvokeMissingCommand(t *testing.T) {
	inv := &Invoker{Command: "steve-no-such-browser-tool"}
	resp, err := inv.Invoke(context.Background(), validRequest(t))

	require.Error(t, err)
	assert.Nil(t, resp)
	var toolErr *ToolError
	assert.False(t, errors.As(err, &toolErr))
}

func TestInvokeRejectsInvalidRequest(t *testing.T) {
	inv := &Invoker{Command: "steve-never-run"}
	_, err := inv.Invoke(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid browser request")
}
