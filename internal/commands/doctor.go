package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dotcommander/versioneer/internal/app"
	"github.com/dotcommander/versioneer/internal/store"
)

// NewDoctorCmd creates the command that checks configuration and the history database.
func NewDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and history database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := app.ConfigDir()
			if err != nil {
				return cmdErr(cmd, err)
			}
			_, settingsErr := app.LoadSettings()
			dbPath, dbSource, err := app.ResolveDBPathDetailed()
			if err != nil {
				return cmdErr(cmd, err)
			}

			var (
				dbOK          bool
				dbErr         string
				schemaCurrent int64
				schemaLatest  int64
				diags         []store.Diagnostic
			)

			// Read-only: doctor never creates or migrates the history database.
			db, err := store.OpenDBReadOnly(dbPath)
			dbMissing := errors.Is(err, store.ErrDBNotFound)
			if err != nil {
				dbErr = err.Error()
			} else {
				dbOK = true
				defer db.Close()
				schemaCurrent, schemaLatest, err = store.SchemaVersion(db)
				if err != nil {
					dbErr = err.Error()
				}
				diags, err = store.RunDiagnostics(db)
				if err != nil && dbErr == "" {
					dbErr = err.Error()
				}
			}

			type resp struct {
				ConfigDir     string             `json:"config_dir"`
				ConfigError   string             `json:"config_error,omitempty"`
				Settings      app.RunSettings    `json:"settings"`
				DBPath        string             `json:"db_path"`
				DBSource      string             `json:"db_source"`
				DBOK          bool               `json:"db_ok"`
				DBErr         string             `json:"db_error,omitempty"`
				SchemaCurrent int64              `json:"schema_current"`
				SchemaLatest  int64              `json:"schema_latest"`
				Diagnostics   []store.Diagnostic `json:"diagnostics,omitempty"`
				Hint          string             `json:"hint,omitempty"`
			}
			r := resp{
				ConfigDir:     configDir,
				Settings:      app.EffectiveRunSettings(),
				DBPath:        dbPath,
				DBSource:      dbSource,
				DBOK:          dbOK,
				DBErr:         dbErr,
				SchemaCurrent: schemaCurrent,
				SchemaLatest:  schemaLatest,
				Diagnostics:   diags,
			}
			if settingsErr != nil {
				r.ConfigError = settingsErr.Error()
			}
			switch {
			case dbMissing:
				r.Hint = "No history recorded yet. The database is created by the first versioneer run."
			case !dbOK:
				r.Hint = "Set db_path to a writable location, use --db-path, or run with --no-history."
			}
			return printSuccess(cmd, r)
		},
	}
}
