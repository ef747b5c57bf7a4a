package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dotcommander/versioneer/internal/models"
)

// VersionFileName is the name of the version file kept in the project root.
const VersionFileName = "versioneer.txt"

// VersionFile reads and writes the single version number of a project.
//
// Writers must hold the project lock (see LockProject); the file itself is not
// locked.
type VersionFile struct {
	path string
}

// NewVersionFile returns the version file for a project directory.
func NewVersionFile(projectDir string) *VersionFile {
	return &VersionFile{path: filepath.Join(projectDir, VersionFileName)}
}

// OpenVersionFile returns a VersionFile at an explicit path.
func OpenVersionFile(path string) *VersionFile {
	return &VersionFile{path: path}
}

// Path returns the file location.
func (f *VersionFile) Path() string { return f.path }

// Init creates the file holding the initial version when it does not exist.
// created reports whether this call wrote it.
func (f *VersionFile) Init() (created bool, err error) {
	fh, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // G304: path is the project's version file
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create version file %s: %w", f.path, err)
	}
	if _, err := fh.WriteString(models.ZeroVersion().String()); err != nil {
		_ = fh.Close()
		return true, fmt.Errorf("write version file %s: %w", f.path, err)
	}
	if err := fh.Close(); err != nil {
		return true, fmt.Errorf("close version file %s: %w", f.path, err)
	}
	return true, nil
}

// Get returns the stored version, initializing the file to 0.0 if it is missing.
func (f *VersionFile) Get() (models.Version, error) {
	if _, err := f.Init(); err != nil {
		return models.Version{}, err
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		return models.Version{}, fmt.Errorf("read version file %s: %w", f.path, err)
	}
	v, err := models.ParseVersion(string(b))
	if err != nil {
		return models.Version{}, &MalformedVersionError{Path: f.path, Content: string(b), Err: err}
	}
	return v, nil
}

// Change replaces the stored version. The new contents are written to a
// temporary file in the same directory and renamed over the old one.
func (f *VersionFile) Change(v models.Version) error {
	return writeFileAtomic(f.path, []byte(v.String()), 0o644)
}

// Reset stores the initial version.
func (f *VersionFile) Reset() error {
	return f.Change(models.ZeroVersion())
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	committed = true
	return nil
}
