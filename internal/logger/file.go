package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/omencyber/steve/internal/models"
)

// FileLogger logs scan events to a timestamped file per run and maintains a
// latest.log symlink pointing to the most recent run.
// It is thread-safe and supports log level filtering.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLoggerWithDir creates a FileLogger in logDir at the default "info" level.
func NewFileLoggerWithDir(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(logDir, "info")
}

// NewFileLoggerWithDirAndLevel creates logDir if needed, opens
// scrape-YYYYMMDD-HHMMSS.log for appending and repoints latest.log at it.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("scrape-%s.log", stamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}

	// Relative target so the log directory can be moved as a whole.
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== steve scrape log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// Path returns the run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}

	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogScanStart records the root and match mode at INFO level.
func (fl *FileLogger) LogScanStart(root string, mode models.MatchMode) {
	if !fl.shouldLog("info") {
		return
	}

	fl.writeRunLog(fmt.Sprintf("[%s] Scanning %s for %s\n", timestamp(), root, mode))
}

// LogSkip records an unreadable entry at WARN level.
func (fl *FileLogger) LogSkip(err error) {
	fl.logWithLevel("WARN", fmt.Sprintf("Skipping entry: %v", err))
}

// LogScanSummary records the final statistics at INFO level, followed by the
// fingerprint so the log can be matched against a history entry.
func (fl *FileLogger) LogScanSummary(rec models.ScanRecord) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	output := rec.OutputFile
	if output == "" {
		output = "stdout"
	}

	message := fmt.Sprintf(
		"\n[%s] === SCAN SUMMARY ===\n"+
			"[%s] Root:         %s\n"+
			"[%s] Mode:         %s\n"+
			"[%s] Matched:      %d\n"+
			"[%s] Skipped:      %d\n"+
			"[%s] Total time:   %.1fs\n"+
			"[%s] Output:       %s\n"+
			"[%s] Fingerprint:  %s\n"+
			"[%s] Completed at: %s\n",
		ts,
		ts, rec.Root,
		ts, rec.Mode,
		ts, rec.Matches(),
		ts, rec.Skipped,
		ts, rec.Duration.Seconds(),
		ts, output,
		ts, rec.Fingerprint,
		ts, time.Now().Format(time.RFC3339),
	)
	if rec.ID != "" {
		message += fmt.Sprintf("[%s] Scan ID:      %s\n", ts, rec.ID)
	}

	fl.writeRunLog(message)
}

// Close flushes and closes the run log file. It is safe to call twice.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
