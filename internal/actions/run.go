package actions

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dotcommander/versioneer/internal/app"
	"github.com/dotcommander/versioneer/internal/archive"
	"github.com/dotcommander/versioneer/internal/models"
	"github.com/dotcommander/versioneer/internal/store"
)

// RunParams configures one backup-and-increment run.
type RunParams struct {
	// ProjectDir is the absolute project directory.
	ProjectDir string
	// Update is the number of decimal places of the increment.
	Update int
	// ArchiveSource selects what is archived: app.ArchiveSourceProject or app.ArchiveSourceCWD.
	ArchiveSource string
	// WorkDir is archived when ArchiveSource is app.ArchiveSourceCWD.
	WorkDir     string
	Exclude     []string
	LockTimeout time.Duration
	// Progress receives each archive entry name.
	Progress func(name string)
}

// RunResult reports what a run did.
type RunResult struct {
	Project         string          `json:"project"`
	VersionFile     string          `json:"version_file"`
	Initialized     bool            `json:"initialized,omitempty"`
	PreviousVersion models.Version  `json:"previous_version"`
	Version         models.Version  `json:"version"`
	ArchiveSource   string          `json:"archive_source"`
	Archive         *archive.Result `json:"archive"`
}

// Run archives the project under its current version and then stores the next
// version. The archive is written before the version file, so a failed backup
// leaves the version untouched.
func Run(ctx context.Context, p RunParams) (*RunResult, error) {
	if err := ValidateProject(p.ProjectDir); err != nil {
		return nil, err
	}
	if err := models.ValidatePrecision(p.Update); err != nil {
		return nil, err
	}
	source, sourceKind, err := archiveSource(p)
	if err != nil {
		return nil, err
	}

	lock, err := store.LockProject(ctx, p.ProjectDir, p.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	vf := store.NewVersionFile(p.ProjectDir)
	created, err := vf.Init()
	if err != nil {
		return nil, err
	}
	current, err := vf.Get()
	if err != nil {
		return nil, err
	}

	output := archive.ArchivePath(p.ProjectDir, current)
	slog.Info("backing up", "project", p.ProjectDir, "source", source, "version", current.String())
	res, err := archive.Backup(ctx, archive.Options{
		Source:   source,
		Output:   output,
		Exclude:  p.Exclude,
		Skip:     []string{filepath.Join(p.ProjectDir, store.LockFileName)},
		Progress: p.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("backup %s: %w", p.ProjectDir, err)
	}
	slog.Info("backup finished", "archive", res.Path, "files", res.Files, "bytes", res.Bytes)

	next, err := current.Next(p.Update)
	if err != nil {
		return nil, err
	}
	slog.Info("updating version", "from", current.String(), "to", next.String())
	if err := vf.Change(next); err != nil {
		return nil, fmt.Errorf("archive %s was written but the version was not updated: %w", res.Path, err)
	}
	slog.Info("update finished", "version", next.String())

	return &RunResult{
		Project:         p.ProjectDir,
		VersionFile:     vf.Path(),
		Initialized:     created,
		PreviousVersion: current,
		Version:         next,
		ArchiveSource:   sourceKind,
		Archive:         res,
	}, nil
}

func archiveSource(p RunParams) (dir string, kind string, err error) {
	kind = app.NormalizeArchiveSource(p.ArchiveSource)
	if kind == "" && p.ArchiveSource != "" {
		return "", "", fmt.Errorf("unknown archive source %q (want %q or %q)", p.ArchiveSource, app.ArchiveSourceProject, app.ArchiveSourceCWD)
	}
	if kind != app.ArchiveSourceCWD {
		return p.ProjectDir, app.ArchiveSourceProject, nil
	}
	if p.WorkDir == "" {
		return "", "", fmt.Errorf("archive source %q needs a working directory", app.ArchiveSourceCWD)
	}
	return p.WorkDir, app.ArchiveSourceCWD, nil
}

// ResetResult reports a reset.
type ResetResult struct {
	Project     string         `json:"project"`
	VersionFile string         `json:"version_file"`
	Reset       bool           `json:"reset"`
	Previous    string         `json:"previous_version,omitempty"`
	Version     models.Version `json:"version"`
}

// Reset stores 0.0 as the project version, skipping backup and increment.
// A malformed or missing version file is simply overwritten.
func Reset(ctx context.Context, projectDir string, lockTimeout time.Duration) (*ResetResult, error) {
	if err := ValidateProject(projectDir); err != nil {
		return nil, err
	}
	lock, err := store.LockProject(ctx, projectDir, lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	vf := store.NewVersionFile(projectDir)
	previous := ""
	if v, err := readExisting(vf); err == nil {
		previous = v
	}

	slog.Info("resetting version to 0.0", "project", projectDir)
	if err := vf.Reset(); err != nil {
		return nil, err
	}
	slog.Info("reset finished")

	return &ResetResult{
		Project:     projectDir,
		VersionFile: vf.Path(),
		Reset:       true,
		Previous:    previous,
		Version:     models.ZeroVersion(),
	}, nil
}

func readExisting(vf *store.VersionFile) (string, error) {
	created, err := vf.Init()
	if err != nil {
		return "", err
	}
	if created {
		return "", nil
	}
	v, err := vf.Get()
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// CurrentResult reports the stored version of a project.
type CurrentResult struct {
	Project     string         `json:"project"`
	VersionFile string         `json:"version_file"`
	Initialized bool           `json:"initialized,omitempty"`
	Version     models.Version `json:"version"`
}

// Current returns the stored version, initializing the file to 0.0 if missing.
func Current(projectDir string) (*CurrentResult, error) {
	if err := ValidateProject(projectDir); err != nil {
		return nil, err
	}
	vf := store.NewVersionFile(projectDir)
	created, err := vf.Init()
	if err != nil {
		return nil, err
	}
	v, err := vf.Get()
	if err != nil {
		return nil, err
	}
	return &CurrentResult{
		Project:     projectDir,
		VersionFile: vf.Path(),
		Initialized: created,
		Version:     v,
	}, nil
}
