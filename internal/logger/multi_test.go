package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/omencyber/steve/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMultiLoggerFansOut(t *testing.T) {
	var first, second bytes.Buffer
	multi := NewMultiLogger(NewConsoleLogger(&first, "debug"), nil, NewConsoleLogger(&second, "warn"))

	multi.LogDebug("debug line")
	multi.LogScanStart("/evidence", models.ExtensionMode("db"))
	multi.LogSkip(errors.New("list /evidence/locked: permission denied"))
	multi.LogScanSummary(sampleRecord())

	assert.Contains(t, first.String(), "debug line")
	assert.Contains(t, first.String(), "Scanning /evidence for extension .db")
	assert.Contains(t, first.String(), "Skipping entry")
	assert.Contains(t, first.String(), "Scan Summary")

	// Each logger keeps its own level.
	assert.NotContains(t, second.String(), "debug line")
	assert.NotContains(t, second.String(), "Scanning")
	assert.Equal(t, 1, strings.Count(second.String(), "\n"))
	assert.Contains(t, second.String(), "[WARN] Skipping entry")
}

func TestMultiLoggerEmpty(t *testing.T) {
	multi := NewMultiLogger()
	multi.LogError("nowhere")
	multi.LogScanSummary(models.ScanRecord{})
}
