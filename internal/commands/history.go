package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotcommander/versioneer/internal/actions"
	"github.com/dotcommander/versioneer/internal/models"
	"github.com/dotcommander/versioneer/internal/output"
)

// NewHistoryCmd creates the command that lists recorded backups and resets.
func NewHistoryCmd() *cobra.Command {
	var (
		limit  int
		all    bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "history [project]",
		Short: "List recorded backups and resets, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "table" {
				return cmdErr(cmd, fmt.Errorf("--format must be json or table, got %q", format))
			}
			project := ""
			if !all {
				p, err := projectArg(args)
				if err != nil {
					return cmdErr(cmd, err)
				}
				project = p
			}

			var snapshots []*models.Snapshot
			if err := withDB(cmd, func(db *DB) error {
				s, err := actions.History(db, project, limit)
				if err != nil {
					return err
				}
				snapshots = s
				return nil
			}); err != nil {
				return err
			}

			if format == "table" {
				output.RenderSnapshots(cmd.OutOrStdout(), snapshots)
				return nil
			}

			type resp struct {
				Project   string             `json:"project,omitempty"`
				Count     int                `json:"count"`
				Snapshots []*models.Snapshot `json:"snapshots"`
			}
			return printSuccess(cmd, resp{Project: project, Count: len(snapshots), Snapshots: snapshots})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Max snapshots (<= 1000)")
	cmd.Flags().BoolVar(&all, "all", false, "List snapshots of every project")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or table")
	return cmd
}
