package commands

import (
	"database/sql"
	"errors"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dotcommander/versioneer/internal/app"
	"github.com/dotcommander/versioneer/internal/models"
	"github.com/dotcommander/versioneer/internal/store"
)

// DB is an alias so command code doesn't need to import database/sql.
type DB = sql.DB

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// The error was already logged and printed by cmdErr.
	return "error already printed"
}

func (e printedError) Unwrap() error { return e.err }

func openDB() (*DB, func(), error) {
	dbPath, err := app.GetDBPath()
	if err != nil {
		return nil, nil, err
	}

	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		return nil, nil, err
	}

	return db, func() { _ = db.Close() }, nil
}

func withDB(cmd *cobra.Command, fn func(db *DB) error) error {
	db, closeDB, err := openDB()
	if err != nil {
		return cmdErr(cmd, err)
	}
	defer closeDB()

	if err := fn(db); err != nil {
		return cmdErr(cmd, err)
	}
	return nil
}

// withHistory runs fn against the history database when enabled. Failures are
// logged as warnings: the version file, not the history, is authoritative.
func withHistory(enabled bool, fn func(db *DB) error) {
	if !enabled {
		return
	}
	db, closeDB, err := openDB()
	if err != nil {
		slog.Warn("history unavailable", "error", err.Error())
		return
	}
	defer closeDB()

	if err := fn(db); err != nil {
		slog.Warn("history not recorded", "error", err.Error())
	}
}

// cmdErr logs err once and writes the error envelope to the command's stdout.
func cmdErr(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	var pe printedError
	if errors.As(err, &pe) {
		return err
	}
	attrs := []any{"error", err.Error()}
	var re models.RecoverableError
	if errors.As(err, &re) {
		attrs = append(attrs, "error_code", re.ErrorCode(), "suggested_action", re.SuggestedAction())
		ctx := re.Context()
		keys := make([]string, 0, len(ctx))
		for k := range ctx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, k, ctx[k])
		}
	}
	slog.Error("command error", attrs...)
	printFailure(cmd.OutOrStdout(), err)
	return printedError{err: err}
}
