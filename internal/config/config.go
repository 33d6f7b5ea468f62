package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/omencyber/steve/internal/browser"
	"github.com/omencyber/steve/internal/logger"
	"gopkg.in/yaml.v3"
)

// HistoryConfig controls the scan history database
type HistoryConfig struct {
	// Enabled records every successful scrape run
	Enabled bool `yaml:"enabled"`

	// DBPath overrides $STEVE_HOME/history/scans.db
	DBPath string `yaml:"db_path"`
}

// BrowserConfig describes the external browser forensics tool
type BrowserConfig struct {
	// Command is the executable to run, looked up on PATH
	Command string `yaml:"command"`

	// Args are passed before the -i/-o/-f flags
	Args []string `yaml:"args"`

	// Timeout bounds a single run (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`
}

// Config represents steve configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory for per-run log files; empty disables file logging
	LogDir string `yaml:"log_dir"`

	History HistoryConfig `yaml:"history"`
	Browser BrowserConfig `yaml:"browser"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		LogDir:   "",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "",
		},
		Browser: BrowserConfig{
			Command: "python",
			Args:    []string{"main.py"},
			Timeout: 30 * time.Minute,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are strings in YAML ("30m"), so decode into a mirror struct first.
	type yamlConfig struct {
		LogLevel string `yaml:"log_level"`
		LogDir   string `yaml:"log_dir"`
		History  struct {
			Enabled *bool  `yaml:"enabled"`
			DBPath  string `yaml:"db_path"`
		} `yaml:"history"`
		Browser struct {
			Command string   `yaml:"command"`
			Args    []string `yaml:"args"`
			Timeout string   `yaml:"timeout"`
		} `yaml:"browser"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.History.Enabled != nil {
		cfg.History.Enabled = *yamlCfg.History.Enabled
	}
	if yamlCfg.History.DBPath != "" {
		cfg.History.DBPath = yamlCfg.History.DBPath
	}
	if yamlCfg.Browser.Command != "" {
		cfg.Browser.Command = yamlCfg.Browser.Command
	}
	// An explicit empty list clears the default script argument.
	if yamlCfg.Browser.Args != nil {
		cfg.Browser.Args = yamlCfg.Browser.Args
	}
	if yamlCfg.Browser.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Browser.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid browser.timeout format %q: %w", yamlCfg.Browser.Timeout, err)
		}
		cfg.Browser.Timeout = timeout
	}

	return cfg, nil
}

// LoadConfigFromDir loads config.yaml from the given steve home directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, logDir *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Browser.Command == "" {
		return fmt.Errorf("browser.command cannot be empty")
	}

	// Timeout can be 0 (no timeout) or positive, negative is invalid
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser.timeout must be >= 0, got %v", c.Browser.Timeout)
	}

	return nil
}

// BrowserInvoker builds the invoker for the configured browser tool.
func (c *Config) BrowserInvoker() *browser.Invoker {
	return &browser.Invoker{
		Command: c.Browser.Command,
		Args:    append([]string(nil), c.Browser.Args...),
		Timeout: c.Browser.Timeout,
	}
}

// HistoryDBPath returns the configured database path, or the default under
// the steve home directory.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	return GetHistoryDBPath()
}
