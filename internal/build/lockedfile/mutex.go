// Package lockedfile provides an inter-process mutex backed by an
// advisory lock on a file.
package lockedfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// A Mutex provides mutual exclusion within and across processes by
// locking a well-known file. The zero Mutex is not valid; use MutexAt.
type Mutex struct {
	Path string
}

// MutexAt returns a new Mutex with Path set to path.
func MutexAt(path string) *Mutex {
	if path == "" {
		panic("lockedfile.MutexAt: path must be non-empty")
	}
	return &Mutex{Path: path}
}

func (mu *Mutex) String() string {
	return fmt.Sprintf("lockedfile.Mutex(%s)", mu.Path)
}

// Lock attempts to lock the Mutex, creating the lock file and its
// directory if needed. It blocks until the lock is held and returns a
// function that releases it.
func (mu *Mutex) Lock() (release func(), err error) {
	if err := os.MkdirAll(filepath.Dir(mu.Path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(mu.Path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, err
	}
	if err := lock(f); err != nil {
		f.Close()
		return nil, &os.PathError{Op: "lock", Path: mu.Path, Err: err}
	}
	return func() {
		unlock(f)
		f.Close()
	}, nil
}
