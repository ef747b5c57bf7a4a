package actions

import (
	"database/sql"
	"errors"

	"github.com/dotcommander/versioneer/internal/models"
	"github.com/dotcommander/versioneer/internal/store"
)

// RecordRun appends a backup row for a finished run.
func RecordRun(db *sql.DB, r *RunResult) (*models.Snapshot, error) {
	if r == nil {
		return nil, errors.New("run result is required")
	}
	s := models.Snapshot{
		Kind:        models.SnapshotKindBackup,
		ProjectPath: r.Project,
		Version:     r.PreviousVersion.String(),
		NextVersion: r.Version.String(),
	}
	if r.Archive != nil {
		s.ArchivePath = r.Archive.Path
		s.FileCount = r.Archive.Files
		s.ByteCount = r.Archive.Bytes
	}
	return store.RecordSnapshot(db, s)
}

// RecordReset appends a reset row.
func RecordReset(db *sql.DB, r *ResetResult) (*models.Snapshot, error) {
	if r == nil {
		return nil, errors.New("reset result is required")
	}
	return store.RecordSnapshot(db, models.Snapshot{
		Kind:        models.SnapshotKindReset,
		ProjectPath: r.Project,
		Version:     r.Previous,
		NextVersion: r.Version.String(),
	})
}

// History lists snapshots for a project, or for every project when projectPath is empty.
func History(db *sql.DB, projectPath string, limit int) ([]*models.Snapshot, error) {
	return store.ListSnapshots(db, store.ListSnapshotsParams{ProjectPath: projectPath, Limit: limit})
}
