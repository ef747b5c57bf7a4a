package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// MigrateDB runs all pending migrations under a file lock so two processes
// opening a fresh database do not race. In-memory databases skip the lock.
func MigrateDB(db *sql.DB, dbPath string) error {
	if !strings.Contains(dbPath, ":memory:") {
		lockF, err := lockFile(context.Background(), dbPath+".migrate.lock", 0)
		if err != nil {
			return fmt.Errorf("migration lock: %w", err)
		}
		defer unlockFile(lockF)
	}
	return RunMigrations(db)
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

// SchemaVersion returns the current and latest migration versions.
// Returns (0, latest, nil) for a fresh DB.
func SchemaVersion(db *sql.DB) (current int64, latest int64, err error) {
	if err := configureGoose(); err != nil {
		return 0, 0, err
	}

	current, err = goose.GetDBVersion(db)
	if err != nil {
		current = 0
	}

	latest, err = latestMigrationVersion()
	if err != nil {
		return current, 0, fmt.Errorf("determine latest version: %w", err)
	}
	return current, latest, nil
}

func configureGoose() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetVerbose(false) // keep stdout clean for JSON output
	goose.SetLogger(goose.NopLogger())

	// goose's dialect controls SQL generation, not the driver name; the
	// modernc driver registers as "sqlite".
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return nil
}

// latestMigrationVersion returns the highest version among embedded migration files.
func latestMigrationVersion() (int64, error) {
	entries, err := embedMigrations.ReadDir("migrations")
	if err != nil {
		return 0, fmt.Errorf("read migrations dir: %w", err)
	}
	var max int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		// "00001_snapshots.sql" -> 1
		idx := strings.IndexByte(name, '_')
		if idx <= 0 {
			continue
		}
		v, err := strconv.ParseInt(name[:idx], 10, 64)
		if err != nil {
			continue
		}
		if v > max {
			max = v
		}
	}
	return max, nil
}
