//go:build !unix

package store

import "errors"

// ErrStoreLocked is the cause when another opener holds the store.
// Not detected on this platform.
var ErrStoreLocked = errors.New("snapshot store is in use by another process")

const lockSuffix = ".lock"

type fileLock struct{}

func acquireLock(path string, shared bool) (*fileLock, error) {
	return &fileLock{}, nil
}

func (l *fileLock) release() {}
