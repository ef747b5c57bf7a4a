package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotcommander/versioneer/internal/models"
)

// Diagnostic represents a single consistency check finding.
type Diagnostic struct {
	Level           string `json:"level"` // "warning" or "error"
	Code            string `json:"code"`
	Message         string `json:"message"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

// RunDiagnostics compares the history ledger against the filesystem and returns findings.
func RunDiagnostics(db *sql.DB) ([]Diagnostic, error) {
	var diags []Diagnostic

	missing, err := findMissingArchives(db)
	if err != nil {
		return nil, fmt.Errorf("missing archive check: %w", err)
	}
	diags = append(diags, missing...)

	drift, err := findVersionDrift(db)
	if err != nil {
		return nil, fmt.Errorf("version drift check: %w", err)
	}
	diags = append(diags, drift...)

	return diags, nil
}

// findMissingArchives finds backup rows whose zip file is gone from disk.
func findMissingArchives(db *sql.DB) ([]Diagnostic, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT id, archive_path
		FROM snapshots
		WHERE kind = 'backup' AND archive_path IS NOT NULL
		ORDER BY id DESC
		LIMIT 1000
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var diags []Diagnostic
	for rows.Next() {
		var (
			id   int64
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		diags = append(diags, Diagnostic{
			Level:           "warning",
			Code:            "MISSING_ARCHIVE",
			Message:         fmt.Sprintf("snapshot %d archive %s no longer exists", id, path),
			SuggestedAction: "restore the archive from another copy or ignore if it was removed on purpose",
		})
	}
	return diags, rows.Err()
}

// findVersionDrift finds projects whose versioneer.txt no longer matches the
// version recorded by their latest snapshot.
func findVersionDrift(db *sql.DB) ([]Diagnostic, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT s.project_path, s.next_version
		FROM snapshots s
		JOIN (
			SELECT project_path, MAX(id) AS id FROM snapshots GROUP BY project_path
		) latest ON latest.id = s.id
		ORDER BY s.project_path
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var diags []Diagnostic
	for rows.Next() {
		var project, recorded string
		if err := rows.Scan(&project, &recorded); err != nil {
			return nil, err
		}
		if d, ok := checkDrift(project, recorded); ok {
			diags = append(diags, d)
		}
	}
	return diags, rows.Err()
}

func checkDrift(project, recorded string) (Diagnostic, bool) {
	if info, err := os.Stat(project); err != nil || !info.IsDir() {
		return Diagnostic{
			Level:           "warning",
			Code:            "MISSING_PROJECT",
			Message:         fmt.Sprintf("project %s no longer exists", project),
			SuggestedAction: "ignore if the project was moved or deleted",
		}, true
	}

	path := filepath.Join(project, VersionFileName)
	b, err := os.ReadFile(path) //nolint:gosec // G304: path is built from a recorded project directory
	if errors.Is(err, os.ErrNotExist) {
		return Diagnostic{}, false
	}
	if err != nil {
		return Diagnostic{
			Level:   "error",
			Code:    "UNREADABLE_VERSION",
			Message: fmt.Sprintf("cannot read %s: %v", path, err),
		}, true
	}

	current, err := models.ParseVersion(string(b))
	if err != nil {
		return Diagnostic{
			Level:           "error",
			Code:            "MALFORMED_VERSION",
			Message:         fmt.Sprintf("%s does not contain a decimal number", path),
			SuggestedAction: fmt.Sprintf("versioneer --reset %s", project),
		}, true
	}
	want, err := models.ParseVersion(recorded)
	if err != nil || current.Equal(want) {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Level:           "warning",
		Code:            "VERSION_DRIFT",
		Message:         fmt.Sprintf("%s holds %s but the last recorded run left %s", path, current, want),
		SuggestedAction: "the version file was edited outside versioneer",
	}, true
}
