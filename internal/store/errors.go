package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dotcommander/versioneer/internal/models"
)

// RecoverableError is an alias for models.RecoverableError.
type RecoverableError = models.RecoverableError

// ErrLockTimeout is matched by LockTimeoutError.
var ErrLockTimeout = errors.New("lock timeout")

// MalformedVersionError reports a version file whose contents are not a version.
type MalformedVersionError struct {
	Path    string
	Content string
	Err     error
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("malformed version file %s: %v", e.Path, e.Err)
}
func (e *MalformedVersionError) Unwrap() error     { return e.Err }
func (e *MalformedVersionError) ErrorCode() string { return "MALFORMED_VERSION" }
func (e *MalformedVersionError) Context() map[string]string {
	content := e.Content
	if len(content) > 64 {
		content = content[:64] + "..."
	}
	return map[string]string{
		"path":    e.Path,
		"content": content,
	}
}
func (e *MalformedVersionError) SuggestedAction() string {
	return "fix the file by hand or run: versioneer --reset"
}
func (e *MalformedVersionError) Is(target error) bool { return target == models.ErrMalformedVersion }

// LockTimeoutError is returned when another run holds the project lock for too long.
type LockTimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for lock %s", e.Timeout, e.Path)
}
func (e *LockTimeoutError) ErrorCode() string { return "LOCK_TIMEOUT" }
func (e *LockTimeoutError) Context() map[string]string {
	return map[string]string{
		"lock_path": e.Path,
		"timeout":   e.Timeout.String(),
	}
}
func (e *LockTimeoutError) SuggestedAction() string {
	return "wait for the other versioneer run to finish, or raise lock_timeout_ms"
}
func (e *LockTimeoutError) Is(target error) bool { return target == ErrLockTimeout }

var (
	_ RecoverableError = (*MalformedVersionError)(nil)
	_ RecoverableError = (*LockTimeoutError)(nil)
)
