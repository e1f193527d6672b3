//go:build unix

package store

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrStoreLocked is the cause when another opener holds the store.
var ErrStoreLocked = errors.New("snapshot store is in use by another process")

// lockSuffix names the lock file next to the store. The lock lives in its own
// file so closing a lock descriptor never touches SQLite's record locks on
// the database.
const lockSuffix = ".lock"

// fileLock is an advisory flock on <store>.lock: shared for read-only
// openers, exclusive for writers.
type fileLock struct {
	f *os.File
}

func acquireLock(path string, shared bool) (*fileLock, error) {
	f, err := os.OpenFile(path+lockSuffix, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	how := unix.LOCK_EX
	if shared {
		how = unix.LOCK_SH
	}
	if err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrStoreLocked
		}
		return nil, fmt.Errorf("lock store: %w", err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() {
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	l.f.Close()
}
