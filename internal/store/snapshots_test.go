package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/versioneer/internal/models"
)

func TestRecordSnapshotAndList(t *testing.T) {
	db := setupTestDB(t)

	first, err := RecordSnapshot(db, models.Snapshot{
		Kind:        models.SnapshotKindBackup,
		ProjectPath: "/work/app",
		Version:     "0.0",
		NextVersion: "0.1",
		ArchivePath: "/work/app_0.0.zip",
		FileCount:   3,
		ByteCount:   120,
	})
	require.NoError(t, err)
	require.Greater(t, first.ID, int64(0))
	require.Equal(t, models.SnapshotKindBackup, first.Kind)
	require.Equal(t, "/work/app_0.0.zip", first.ArchivePath)
	require.False(t, first.CreatedAt.IsZero())

	_, err = RecordSnapshot(db, models.Snapshot{
		Kind:        models.SnapshotKindReset,
		ProjectPath: "/work/app",
		Version:     "0.1",
		NextVersion: "0.0",
	})
	require.NoError(t, err)

	_, err = RecordSnapshot(db, models.Snapshot{
		Kind:        models.SnapshotKindBackup,
		ProjectPath: "/work/other",
		Version:     "1.0",
		NextVersion: "2.0",
		ArchivePath: "/work/other_1.0.zip",
	})
	require.NoError(t, err)

	list, err := ListSnapshots(db, ListSnapshotsParams{ProjectPath: "/work/app"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, models.SnapshotKindReset, list[0].Kind)
	require.Empty(t, list[0].ArchivePath)
	require.Equal(t, first.ID, list[1].ID)

	all, err := ListSnapshots(db, ListSnapshotsParams{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "/work/other", all[0].ProjectPath)

	limited, err := ListSnapshots(db, ListSnapshotsParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestRecordSnapshot_Validates(t *testing.T) {
	db := setupTestDB(t)

	_, err := RecordSnapshot(db, models.Snapshot{Kind: models.SnapshotKindBackup})
	require.EqualError(t, err, "project path is required")

	_, err = RecordSnapshot(db, models.Snapshot{Kind: "restore", ProjectPath: "/p"})
	require.EqualError(t, err, `unknown snapshot kind "restore"`)
}

func TestLatestSnapshot(t *testing.T) {
	db := setupTestDB(t)

	got, err := LatestSnapshot(db, "/work/app")
	require.NoError(t, err)
	require.Nil(t, got)

	for _, next := range []string{"1.0", "2.0"} {
		_, err := RecordSnapshot(db, models.Snapshot{
			Kind:        models.SnapshotKindBackup,
			ProjectPath: "/work/app",
			Version:     "0.0",
			NextVersion: next,
		})
		require.NoError(t, err)
	}

	got, err = LatestSnapshot(db, "/work/app")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "2.0", got.NextVersion)
}
