package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockProject_CreatesLockFile(t *testing.T) {
	dir := t.TempDir()

	lock, err := LockProject(context.Background(), dir, time.Second)
	require.NoError(t, err)
	defer lock.Unlock()

	require.FileExists(t, filepath.Join(dir, LockFileName))
}

func TestLockProject_SecondHolderTimesOut(t *testing.T) {
	dir := t.TempDir()

	first, err := LockProject(context.Background(), dir, time.Second)
	require.NoError(t, err)
	defer first.Unlock()

	_, err = LockProject(context.Background(), dir, 150*time.Millisecond)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrLockTimeout)

	var le *LockTimeoutError
	require.True(t, errors.As(err, &le))
	require.Equal(t, filepath.Join(dir, LockFileName), le.Path)
	require.Equal(t, "LOCK_TIMEOUT", le.ErrorCode())
}

func TestLockProject_WaitsForRelease(t *testing.T) {
	dir := t.TempDir()

	first, err := LockProject(context.Background(), dir, time.Second)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		first.Unlock()
	}()

	second, err := LockProject(context.Background(), dir, 5*time.Second)
	require.NoError(t, err)
	second.Unlock()
}

func TestLockProject_HonorsContext(t *testing.T) {
	dir := t.TempDir()

	first, err := LockProject(context.Background(), dir, time.Second)
	require.NoError(t, err)
	defer first.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = LockProject(ctx, dir, time.Minute)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProjectLock_UnlockIsNilSafe(t *testing.T) {
	var lock *ProjectLock
	require.NotPanics(t, func() { lock.Unlock() })

	lock, err := LockProject(context.Background(), t.TempDir(), time.Second)
	require.NoError(t, err)
	lock.Unlock()
	require.NotPanics(t, func() { lock.Unlock() })
}
