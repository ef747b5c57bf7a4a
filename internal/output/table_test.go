package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/versioneer/internal/models"
)

func TestRenderSnapshots_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderSnapshots(&buf, nil)
	require.Contains(t, buf.String(), "No snapshots recorded.")
}

func TestRenderSnapshots_Rows(t *testing.T) {
	var buf bytes.Buffer
	RenderSnapshots(&buf, []*models.Snapshot{
		{
			ID:          2,
			Kind:        models.SnapshotKindReset,
			ProjectPath: "/work/app",
			Version:     "0.2",
			NextVersion: "0.0",
			CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			ID:          1,
			Kind:        models.SnapshotKindBackup,
			ProjectPath: "/work/app",
			Version:     "0.1",
			NextVersion: "0.2",
			ArchivePath: "/work/app_0.1.zip",
			FileCount:   4,
			ByteCount:   2048,
			CreatedAt:   time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC),
		},
	})

	out := buf.String()
	require.Contains(t, out, "VERSION")
	require.Contains(t, out, "/work/app_0.1.zip")
	require.Contains(t, out, "2.0 kB")
	require.Contains(t, out, "reset")
	require.Contains(t, out, "backup")
}
