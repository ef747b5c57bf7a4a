package actions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotcommander/versioneer/internal/models"
)

// ErrProjectNotFound is matched by ProjectNotFoundError.
var ErrProjectNotFound = errors.New("project not found")

// ProjectNotFoundError is returned when the project path is missing or not a directory.
type ProjectNotFoundError struct {
	Path   string
	Reason string
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project must be an existing folder: %s (%s)", e.Path, e.Reason)
}
func (e *ProjectNotFoundError) ErrorCode() string { return "PROJECT_NOT_FOUND" }
func (e *ProjectNotFoundError) Context() map[string]string {
	return map[string]string{"path": e.Path, "reason": e.Reason}
}
func (e *ProjectNotFoundError) SuggestedAction() string {
	return "pass an existing project directory, e.g. versioneer ./myproject"
}
func (e *ProjectNotFoundError) Is(target error) bool { return target == ErrProjectNotFound }

var _ models.RecoverableError = (*ProjectNotFoundError)(nil)

// ResolveProject turns the project argument into a clean absolute path.
// Relative arguments (including the default ".") are joined with workDir.
func ResolveProject(workDir, arg string) string {
	if arg == "" {
		arg = "."
	}
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg)
	}
	return filepath.Join(workDir, arg)
}

// ValidateProject checks that dir exists and is a directory.
func ValidateProject(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return &ProjectNotFoundError{Path: dir, Reason: "does not exist"}
	}
	if err != nil {
		return fmt.Errorf("stat project %s: %w", dir, err)
	}
	if !info.IsDir() {
		return &ProjectNotFoundError{Path: dir, Reason: "not a directory"}
	}
	return nil
}
