package cmd

import (
	"fmt"

	"github.com/omencyber/steve/internal/config"
	"github.com/omencyber/steve/internal/history"
	"github.com/omencyber/steve/internal/logger"
	"github.com/spf13/cobra"
)

// session carries the configuration and loggers shared by one command run.
type session struct {
	cfg     *config.Config
	log     logger.Logger
	fileLog *logger.FileLogger
}

// newSession loads configuration, applies the persistent flags and builds
// the console and file loggers. Logs always go to the command's stderr.
func newSession(cmd *cobra.Command) (*session, error) {
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		home, err := config.GetSteveHome()
		if err != nil {
			return nil, fmt.Errorf("failed to locate steve home: %w", err)
		}
		cfg, err = config.LoadConfigFromDir(home)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	var logLevel, logDir *string
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDir = &v
	}
	cfg.MergeWithFlags(logLevel, logDir)

	// --verbose and --quiet win over both the file and --log-level
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if verbose && quiet {
		return nil, fmt.Errorf("--verbose and --quiet cannot be used together")
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if quiet {
		cfg.LogLevel = "error"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &session{cfg: cfg}
	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.LogDir == "" {
		s.log = consoleLog
		return s, nil
	}

	fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	s.fileLog = fileLog
	s.log = logger.NewMultiLogger(consoleLog, fileLog)
	return s, nil
}

// Close flushes the file logger, if any.
func (s *session) Close() {
	if s.fileLog != nil {
		s.fileLog.Close()
	}
}

// openHistory opens the scan history database at the configured path.
func (s *session) openHistory() (*history.Store, error) {
	dbPath, err := s.cfg.HistoryDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve history database: %w", err)
	}
	return history.NewStore(dbPath)
}
