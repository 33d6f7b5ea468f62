package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetSteveHome returns the steve home directory
// Priority order:
//  1. STEVE_HOME environment variable (if set)
//  2. .steve in the current working directory (created if missing)
func GetSteveHome() (string, error) {
	if home := os.Getenv("STEVE_HOME"); home != "" {
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	steveHome := filepath.Join(cwd, ".steve")
	if err := os.MkdirAll(steveHome, 0755); err != nil {
		return "", fmt.Errorf("create steve home directory: %w", err)
	}

	return steveHome, nil
}

// GetHistoryDBPath returns $STEVE_HOME/history/scans.db, creating the
// history directory so the database can be opened directly.
func GetHistoryDBPath() (string, error) {
	home, err := GetSteveHome()
	if err != nil {
		return "", err
	}

	historyDir := filepath.Join(home, "history")
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return "", fmt.Errorf("create history directory: %w", err)
	}

	return filepath.Join(historyDir, "scans.db"), nil
}
