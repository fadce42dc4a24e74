package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// runLock serializes index writes within the process and, through a lock
// file, across processes.
type runLock struct {
	mu    sync.Mutex
	path  string
	flock *flock.Flock
}

func newRunLock(path string) *runLock {
	l := &runLock{path: path}
	if path != "" {
		l.flock = flock.New(path)
	}
	return l
}

// Lock blocks until the lock is held or ctx ends.
func (l *runLock) Lock(ctx context.Context) error {
	l.mu.Lock()
	if l.flock == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("create lock directory: %w", err)
	}
	locked, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	if !locked {
		l.mu.Unlock()
		return fmt.Errorf("acquire lock %s: not acquired", l.path)
	}
	return nil
}

// Unlock releases the lock taken by Lock.
func (l *runLock) Unlock() error {
	defer l.mu.Unlock()
	if l.flock == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
