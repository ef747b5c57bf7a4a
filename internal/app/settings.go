package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Archive source values for Settings.ArchiveSource.
const (
	ArchiveSourceProject = "project"
	ArchiveSourceCWD     = "cwd"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	DBPath        string   `yaml:"db_path"`
	DefaultUpdate *int     `yaml:"default_update"`
	ArchiveSource string   `yaml:"archive_source"`
	Exclude       []string `yaml:"exclude"`
	History       *bool    `yaml:"history"`
	LockTimeoutMS int      `yaml:"lock_timeout_ms"`
}

// RunSettings are effective runtime values used by a backup run.
type RunSettings struct {
	DefaultUpdate int           `json:"default_update"`
	ArchiveSource string        `json:"archive_source"`
	Exclude       []string      `json:"exclude,omitempty"`
	History       bool          `json:"history"`
	LockTimeout   time.Duration `json:"lock_timeout"`
}

const (
	defaultLockTimeoutMS = 10000
	maxLockTimeoutMS     = 10 * 60 * 1000
)

// EffectiveRunSettings returns validated run settings with defaults.
// Invalid or missing config values fall back to safe defaults.
func EffectiveRunSettings() RunSettings {
	cfg := RunSettings{
		ArchiveSource: ArchiveSourceProject,
		History:       true,
		LockTimeout:   defaultLockTimeoutMS * time.Millisecond,
	}

	s, err := LoadSettings()
	if err != nil {
		return cfg
	}

	if s.DefaultUpdate != nil && *s.DefaultUpdate >= 0 {
		cfg.DefaultUpdate = *s.DefaultUpdate
	}
	if src := NormalizeArchiveSource(s.ArchiveSource); src != "" {
		cfg.ArchiveSource = src
	}
	for _, pattern := range s.Exclude {
		if p := strings.TrimSpace(pattern); p != "" {
			cfg.Exclude = append(cfg.Exclude, p)
		}
	}
	if s.History != nil {
		cfg.History = *s.History
	}
	if s.LockTimeoutMS > 0 {
		ms := s.LockTimeoutMS
		if ms > maxLockTimeoutMS {
			ms = maxLockTimeoutMS
		}
		cfg.LockTimeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

// NormalizeArchiveSource maps user input to an ArchiveSource* constant, or "" when unknown.
func NormalizeArchiveSource(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ArchiveSourceProject:
		return ArchiveSourceProject
	case ArchiveSourceCWD:
		return ArchiveSourceCWD
	default:
		return ""
	}
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// dbPathOverrideMu and dbPathOverride implement a mutex-protected process-wide override for CLI --db-path.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// ConfigPaths lists the config files in lookup order.
func ConfigPaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(string(os.PathSeparator), "etc", "versioneer", "config.yaml"),
		"config.yaml",
	}, nil
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/versioneer/config.yaml
// 2) /etc/versioneer/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		paths, err := ConfigPaths()
		if err != nil {
			settingsErr = err
			return
		}
		for _, p := range paths {
			s, err := loadSettingsFile(p)
			if err == nil {
				settings = s
				return
			}
			if !errors.Is(err, os.ErrNotExist) {
				settingsErr = err
				return
			}
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path) //nolint:gosec // G304: path comes from ConfigPaths
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
