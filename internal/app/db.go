package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DBFileName is the default history database file name inside ConfigDir.
const DBFileName = "history.db"

// GetDBPath resolves the history database path.
// Order of precedence:
// 1) CLI override (e.g. --db-path)
// 2) Environment variable: VERSIONEER_DB_PATH
// 3) config.yaml: db_path
// 4) Default: ~/.config/versioneer/history.db
// Ensures the parent directory exists.
func GetDBPath() (string, error) {
	path, _, err := ResolveDBPathDetailed()
	return path, err
}

// ResolveDBPathDetailed returns the resolved DB path along with the source of that decision.
func ResolveDBPathDetailed() (path string, source string, err error) {
	if override := getDBPathOverride(); override != "" {
		resolvedPath, ensureErr := EnsureDBDir(override)
		return resolvedPath, "cli(--db-path)", ensureErr
	}

	if envPath := os.Getenv("VERSIONEER_DB_PATH"); envPath != "" {
		resolvedPath, ensureErr := EnsureDBDir(envPath)
		return resolvedPath, "env(VERSIONEER_DB_PATH)", ensureErr
	}

	configPaths, err := ConfigPaths()
	if err != nil {
		return "", "", fmt.Errorf("failed to determine config directory: %w", err)
	}

	for _, p := range configPaths {
		s, loadErr := loadSettingsFile(p)
		if loadErr == nil {
			if s.DBPath != "" {
				resolvedPath, ensureErr := EnsureDBDir(expandHome(s.DBPath))
				return resolvedPath, fmt.Sprintf("config(%s)", p), ensureErr
			}
			// First config file found wins, as in LoadSettings.
			break
		}
		if errors.Is(loadErr, os.ErrNotExist) {
			continue
		}
		return "", "", fmt.Errorf("failed to load config %s: %w", p, loadErr)
	}

	configDir, err := ConfigDir()
	if err != nil {
		return "", "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	resolved, err := EnsureDBDir(filepath.Join(configDir, DBFileName))
	return resolved, "default(~/.config/versioneer/history.db)", err
}

// EnsureDBDir creates the parent directory of dbPath.
func EnsureDBDir(dbPath string) (string, error) {
	if dbPath == ":memory:" {
		return dbPath, nil
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return dbPath, nil
}

func expandHome(p string) string {
	if p == "~" || len(p) > 1 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}
