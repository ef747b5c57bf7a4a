package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/unix"
)

// LockFileName is the advisory lock file kept next to the version file.
const LockFileName = VersionFileName + ".lock"

// DefaultLockTimeout bounds how long a run waits for another run on the same project.
const DefaultLockTimeout = 10 * time.Second

// ProjectLock is an exclusive advisory lock over one project's version file.
type ProjectLock struct {
	f *os.File
}

// LockProject takes the project lock, retrying with backoff until timeout.
// A non-positive timeout means DefaultLockTimeout.
func LockProject(ctx context.Context, projectDir string, timeout time.Duration) (*ProjectLock, error) {
	lockPath := filepath.Join(projectDir, LockFileName)
	f, err := lockFile(ctx, lockPath, timeout)
	if err != nil {
		return nil, err
	}
	return &ProjectLock{f: f}, nil
}

// Unlock releases the lock. Nil-safe.
func (l *ProjectLock) Unlock() {
	if l == nil {
		return
	}
	unlockFile(l.f)
	l.f = nil
}

// lockFile acquires an exclusive flock on lockPath. The attempt is non-blocking
// and retried with exponential backoff until timeout or ctx is done.
func lockFile(ctx context.Context, lockPath string, timeout time.Duration) (*os.File, error) {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	if dir := filepath.Dir(lockPath); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // G304: lockPath derived from trusted project or db path
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = timeout
	b.RandomizationFactor = 0.1

	err = backoff.Retry(func() error {
		flockErr := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if flockErr == nil {
			return nil
		}
		if errors.Is(flockErr, unix.EWOULDBLOCK) || errors.Is(flockErr, unix.EINTR) {
			return flockErr
		}
		return backoff.Permanent(flockErr)
	}, backoff.WithContext(b, ctx))
	if err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, &LockTimeoutError{Path: lockPath, Timeout: timeout}
		}
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	return f, nil
}

// unlockFile releases the advisory lock and closes the file. Nil-safe.
func unlockFile(f *os.File) {
	if f == nil {
		return
	}
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	_ = f.Close()
}
