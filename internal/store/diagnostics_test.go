package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/versioneer/internal/models"
)

func recordBackup(t *testing.T, db *sql.DB, project, version, next, archive string) {
	t.Helper()
	_, err := RecordSnapshot(db, models.Snapshot{
		Kind:        models.SnapshotKindBackup,
		ProjectPath: project,
		Version:     version,
		NextVersion: next,
		ArchivePath: archive,
	})
	require.NoError(t, err)
}

func TestRunDiagnostics_Clean(t *testing.T) {
	db := setupTestDB(t)

	diags, err := RunDiagnostics(db)
	require.NoError(t, err)
	require.Empty(t, diags)
}

func TestRunDiagnostics_Consistent(t *testing.T) {
	db := setupTestDB(t)
	parent := t.TempDir()
	project := filepath.Join(parent, "app")
	require.NoError(t, os.Mkdir(project, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, VersionFileName), []byte("0.10"), 0o644))
	archive := filepath.Join(parent, "app_0.0.zip")
	require.NoError(t, os.WriteFile(archive, []byte("zip"), 0o644))

	recordBackup(t, db, project, "0.0", "0.1", archive)

	diags, err := RunDiagnostics(db)
	require.NoError(t, err)
	require.Empty(t, diags)
}

func TestRunDiagnostics_MissingArchive(t *testing.T) {
	db := setupTestDB(t)
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, VersionFileName), []byte("1.0"), 0o644))

	recordBackup(t, db, project, "0.0", "1.0", filepath.Join(project, "..", "gone_0.0.zip"))

	diags, err := RunDiagnostics(db)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	require.Equal(t, "MISSING_ARCHIVE", diags[0].Code)
	require.Equal(t, "warning", diags[0].Level)
	require.Contains(t, diags[0].Message, "gone_0.0.zip")
	require.NotEmpty(t, diags[0].SuggestedAction)
}

func TestRunDiagnostics_VersionDrift(t *testing.T) {
	db := setupTestDB(t)
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, VersionFileName), []byte("7.0"), 0o644))

	recordBackup(t, db, project, "0.0", "1.0", "")

	diags, err := RunDiagnostics(db)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	require.Equal(t, "VERSION_DRIFT", diags[0].Code)
	require.Contains(t, diags[0].Message, "7.0")
	require.Contains(t, diags[0].Message, "1.0")
}

func TestRunDiagnostics_OnlyLatestSnapshotCounts(t *testing.T) {
	db := setupTestDB(t)
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, VersionFileName), []byte("2.0"), 0o644))

	recordBackup(t, db, project, "0.0", "1.0", "")
	recordBackup(t, db, project, "1.0", "2.0", "")

	diags, err := RunDiagnostics(db)
	require.NoError(t, err)
	require.Empty(t, diags)
}

func TestRunDiagnostics_MissingProjectAndMalformed(t *testing.T) {
	db := setupTestDB(t)
	parent := t.TempDir()
	broken := filepath.Join(parent, "broken")
	require.NoError(t, os.Mkdir(broken, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, VersionFileName), []byte("abc"), 0o644))

	recordBackup(t, db, broken, "0.0", "1.0", "")
	recordBackup(t, db, filepath.Join(parent, "vanished"), "0.0", "1.0", "")

	diags, err := RunDiagnostics(db)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	codes := []string{diags[0].Code, diags[1].Code}
	require.ElementsMatch(t, []string{"MALFORMED_VERSION", "MISSING_PROJECT"}, codes)
}
