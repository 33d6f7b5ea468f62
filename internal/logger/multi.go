package logger

import "github.com/omencyber/steve/internal/models"

// MultiLogger fans every event out to each wrapped logger in order.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger wraps loggers. Nil entries are dropped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

func (m *MultiLogger) LogScanStart(root string, mode models.MatchMode) {
	for _, l := range m.loggers {
		l.LogScanStart(root, mode)
	}
}

func (m *MultiLogger) LogSkip(err error) {
	for _, l := range m.loggers {
		l.LogSkip(err)
	}
}

func (m *MultiLogger) LogScanSummary(rec models.ScanRecord) {
	for _, l := range m.loggers {
		l.LogScanSummary(rec)
	}
}
