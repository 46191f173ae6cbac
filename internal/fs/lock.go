package fs

import (
	"context"
	"errors"
	"os"
	"time"
)

// errLocked is returned by tryLock when another holder owns the lock.
var errLocked = errors.New("fs: lock held")

// lockPollInterval is how often Lock retries a held lock.
const lockPollInterval = 20 * time.Millisecond

// FileLock is an advisory lock on a lock file.
type FileLock struct {
	f *os.File
}

// Lock acquires an exclusive advisory lock on path, creating the file if
// needed. It waits for other holders until ctx is done.
func Lock(ctx context.Context, path string) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		err := tryLock(f)
		if err == nil {
			return &FileLock{f: f}, nil
		}
		if !errors.Is(err, errLocked) {
			_ = f.Close()
			return nil, err
		}
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Unlock releases the lock. The lock file is left in place.
func (l *FileLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
