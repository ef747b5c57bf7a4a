package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/versioneer/internal/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDBPath := t.TempDir() + "/test.db"

	db, err := InitDBWithPath(testDBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInitDB(t *testing.T) {
	tempDir := t.TempDir()
	testDBPath := tempDir + "/test.db"

	db, err := InitDBWithPath(testDBPath)
	if err != nil {
		t.Fatalf("InitDBWithPath failed: %v", err)
	}
	defer db.Close()

	_, statErr := os.Stat(testDBPath)
	if os.IsNotExist(statErr) {
		t.Fatalf("Database file was not created at %s", testDBPath)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='snapshots'").Scan(&name); err != nil {
		t.Errorf("Table snapshots was not created: %v", err)
	}

	var journalMode string
	err = db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode=wal, got %s", journalMode)
	}
}

func TestInitDB_ReopenIsIdempotent(t *testing.T) {
	path := t.TempDir() + "/test.db"

	db, err := InitDBWithPath(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDBWithPath(path)
	require.NoError(t, err)
	defer db.Close()

	current, latest, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, latest, current)
	require.GreaterOrEqual(t, latest, int64(1))
}

func TestNormalizeSQLiteDSN(t *testing.T) {
	require.Equal(t, "file:/tmp/x.db?mode=rwc", normalizeSQLiteDSN("/tmp/x.db"))
	require.Equal(t, "file::memory:?cache=shared", normalizeSQLiteDSN(":memory:"))
	require.Equal(t, "file:foo.db?mode=ro", normalizeSQLiteDSN("file:foo.db?mode=ro"))
}

func TestOpenDBReadOnly_MissingFile(t *testing.T) {
	path := t.TempDir() + "/absent.db"

	_, err := OpenDBReadOnly(path)
	require.ErrorIs(t, err, ErrDBNotFound)
	require.NoFileExists(t, path)
}

func TestOpenDBReadOnly_ReadsButRejectsWrites(t *testing.T) {
	path := t.TempDir() + "/test.db"
	db, err := InitDBWithPath(path)
	require.NoError(t, err)
	_, err = RecordSnapshot(db, models.Snapshot{
		Kind:        models.SnapshotKindReset,
		ProjectPath: "/work/app",
		Version:     "1.0",
		NextVersion: "0.0",
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ro, err := OpenDBReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	rows, err := ListSnapshots(ro, ListSnapshotsParams{ProjectPath: "/work/app"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	current, latest, err := SchemaVersion(ro)
	require.NoError(t, err)
	require.Equal(t, latest, current)

	_, err = ro.Exec(`DELETE FROM snapshots`)
	require.Error(t, err)
}
