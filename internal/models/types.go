package models

import "time"

// SnapshotKind identifies what a history record describes.
type SnapshotKind string

// Snapshot kind constants.
const (
	SnapshotKindBackup SnapshotKind = "backup"
	SnapshotKindReset  SnapshotKind = "reset"
)

// Snapshot is one row of the run history: a backup (archive + increment) or a reset.
type Snapshot struct {
	ID          int64        `json:"id"`
	Kind        SnapshotKind `json:"kind"`
	ProjectPath string       `json:"project_path"`
	// Version is the version text before the run; the archive is named after it.
	Version     string    `json:"version"`
	NextVersion string    `json:"next_version"`
	ArchivePath string    `json:"archive_path,omitempty"`
	FileCount   int       `json:"file_count"`
	ByteCount   int64     `json:"byte_count"`
	CreatedAt   time.Time `json:"created_at"`
}
