package output

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dotcommander/versioneer/internal/models"
)

// RenderSnapshots writes history rows as a human-readable table.
func RenderSnapshots(w io.Writer, snapshots []*models.Snapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No snapshots recorded."))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "When", "Kind", "Project", "Version", "Next", "Files", "Size", "Archive"})

	for _, s := range snapshots {
		archive := s.ArchivePath
		if archive == "" {
			archive = "-"
		}
		t.AppendRow(table.Row{
			s.ID,
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			formatKind(s.Kind),
			s.ProjectPath,
			s.Version,
			s.NextVersion,
			s.FileCount,
			humanize.Bytes(uint64(max(s.ByteCount, 0))),
			archive,
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func formatKind(k models.SnapshotKind) string {
	switch k {
	case models.SnapshotKindBackup:
		return text.FgGreen.Sprint(string(k))
	case models.SnapshotKindReset:
		return text.FgYellow.Sprint(string(k))
	default:
		return string(k)
	}
}
