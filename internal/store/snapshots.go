package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dotcommander/versioneer/internal/models"
)

const snapshotColumns = `id, kind, project_path, version, next_version, archive_path, file_count, byte_count, created_at`

// RecordSnapshot appends a history row and returns it as stored.
func RecordSnapshot(db *sql.DB, s models.Snapshot) (*models.Snapshot, error) {
	if s.ProjectPath == "" {
		return nil, errors.New("project path is required")
	}
	switch s.Kind {
	case models.SnapshotKindBackup, models.SnapshotKindReset:
	default:
		return nil, fmt.Errorf("unknown snapshot kind %q", s.Kind)
	}

	var out *models.Snapshot
	err := Transact(db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(context.Background(), `
			INSERT INTO snapshots (kind, project_path, version, next_version, archive_path, file_count, byte_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, string(s.Kind), s.ProjectPath, s.Version, s.NextVersion, nullIfEmpty(s.ArchivePath), s.FileCount, s.ByteCount)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read snapshot id: %w", err)
		}

		row := tx.QueryRowContext(context.Background(), `SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
		stored, err := scanSnapshot(row)
		if err != nil {
			return fmt.Errorf("failed to fetch snapshot: %w", err)
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListSnapshotsParams filters ListSnapshots. An empty ProjectPath lists every project.
type ListSnapshotsParams struct {
	ProjectPath string
	Limit       int
}

// ListSnapshots returns history rows, newest first.
func ListSnapshots(db *sql.DB, p ListSnapshotsParams) ([]*models.Snapshot, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	query := `SELECT ` + snapshotColumns + ` FROM snapshots`
	args := []any{}
	if p.ProjectPath != "" {
		query += ` WHERE project_path = ?`
		args = append(args, p.ProjectPath)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	var out []*models.Snapshot
	err := RetryWithBackoff(func() error {
		rows, err := db.QueryContext(context.Background(), query, args...)
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}
		defer func() { _ = rows.Close() }()

		out = make([]*models.Snapshot, 0)
		for rows.Next() {
			s, err := scanSnapshot(rows)
			if err != nil {
				return fmt.Errorf("failed to scan snapshot: %w", err)
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LatestSnapshot returns the newest history row for a project, or nil when there is none.
func LatestSnapshot(db *sql.DB, projectPath string) (*models.Snapshot, error) {
	var out *models.Snapshot
	err := RetryWithBackoff(func() error {
		row := db.QueryRowContext(context.Background(), `
			SELECT `+snapshotColumns+` FROM snapshots
			WHERE project_path = ?
			ORDER BY id DESC
			LIMIT 1
		`, projectPath)
		s, err := scanSnapshot(row)
		if errors.Is(err, sql.ErrNoRows) {
			out = nil
			return nil
		}
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (*models.Snapshot, error) {
	var (
		s       models.Snapshot
		kind    string
		archive sql.NullString
	)
	if err := r.Scan(&s.ID, &kind, &s.ProjectPath, &s.Version, &s.NextVersion, &archive, &s.FileCount, &s.ByteCount, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Kind = models.SnapshotKind(kind)
	if archive.Valid {
		s.ArchivePath = archive.String
	}
	return &s, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
