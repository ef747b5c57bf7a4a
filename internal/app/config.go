package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/versioneer/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "versioneer"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# versioneer configuration
# Run: versioneer --help

# Decimal places used when --update is not given.
# default_update: 0

# Directory archived on each run: "project" (the named project) or
# "cwd" (the current working directory).
# archive_source: project

# Glob patterns left out of archives. Matched against the relative
# path and the base name.
# exclude:
#   - .git
#   - node_modules

# Record every backup and reset in the history database.
# history: true

# How long to wait for another run on the same project.
# lock_timeout_ms: 10000

# Optional: override the SQLite history database location.
# Can also be set via VERSIONEER_DB_PATH or --db-path.
# db_path: ~/.config/versioneer/history.db
`
