// Package lock serialises writers to a unit directory with an flock.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrLocked indicates the lock is held by another process.
var ErrLocked = errors.New("lock is held by another process")

// Lock represents a file-based lock.
type Lock struct {
	name string
	path string
	file *os.File
}

// New creates a lock named name in dir. Typically dir is the project's lock
// directory and name the project.
func New(dir, name string) *Lock {
	return &Lock{
		name: name,
		path: filepath.Join(dir, name+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire attempts to acquire the lock without blocking.
// Returns an error wrapping ErrLocked if another process holds it.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		l.file = nil
		if errors.Is(err, unix.EWOULDBLOCK) {
			return fmt.Errorf("%w: another operation on %s is already running", ErrLocked, l.name)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// PID for debugging
	if err := f.Truncate(0); err == nil {
		fmt.Fprintf(f, "%d\n", os.Getpid())
	}

	l.file = f
	return nil
}

// Release releases the lock. The lock file stays in place so a waiting
// process never locks a file that is about to be unlinked.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}

	return nil
}

// WithLock executes a function while holding the lock.
// The lock is automatically released when the function returns.
func WithLock(dir, name string, fn func() error) error {
	lock := New(dir, name)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
