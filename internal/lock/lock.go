// Package lock serializes aictl invocations via an exclusive-create lock
// file.
//
// The lock file is the only cross-invocation shared resource. Acquisition
// relies solely on O_CREATE|O_EXCL semantics; there is no separate mutex
// abstraction. A lock older than the stale threshold is presumed to belong
// to a crashed process and is reclaimed.
//
// Callers hold the lock for the duration of a mutating operation and
// release it on every exit path:
//
//	l, err := lock.Acquire(paths.LockPath(), "sync")
//	if err != nil { ... }
//	defer l.Release()
package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// StaleThreshold is the age after which an existing lock is presumed
// abandoned and may be reclaimed.
const StaleThreshold = 10 * time.Second

// maxAttempts bounds acquisition retries.
const maxAttempts = 3

// initialDelay is the wait before the first retry; it doubles per attempt.
const initialDelay = 100 * time.Millisecond

// BusyError indicates another invocation holds a live lock.
type BusyError struct {
	// PID is the process id of the lock holder.
	PID int

	// Command is the holder's command name.
	Command string

	// Path is the lock file location.
	Path string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("another aictl invocation (pid %d, command %q) holds the lock at %s",
		e.PID, e.Command, e.Path)
}

// contents is the serialized lock file body.
type contents struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
	Command    string    `json:"command"`
}

// Lock is an acquired process lock. Release it with [Lock.Release].
type Lock struct {
	path     string
	pid      int
	released bool
}

// Acquire takes the lock at path for the named command. It retries up to
// three times with doubling delay, reclaiming stale locks along the way.
// When a live lock persists it fails with a *BusyError carrying the
// blocking pid and command.
func Acquire(lockPath, command string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o700); err != nil {
		return nil, errors.Wrap(err, "creating lock directory")
	}

	delay := initialDelay
	var lastBusy *BusyError

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay *= 2
		}

		l, busy, err := tryAcquire(lockPath, command)
		if err != nil {
			return nil, err
		}
		if l != nil {
			return l, nil
		}
		lastBusy = busy

		// A stale holder was reclaimed inside tryAcquire; loop to retry
		// immediately on the next pass.
	}

	if lastBusy == nil {
		lastBusy = &BusyError{Path: lockPath}
	}
	return nil, lastBusy
}

// tryAcquire makes one exclusive-create attempt. On contention it inspects
// the existing lock and deletes it when stale.
func tryAcquire(lockPath, command string) (*Lock, *BusyError, error) {
	f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err == nil {
		pid := os.Getpid()
		body := contents{PID: pid, AcquiredAt: time.Now().UTC(), Command: command}
		enc := json.NewEncoder(f)
		if encErr := enc.Encode(body); encErr != nil {
			f.Close()
			os.Remove(lockPath)
			return nil, nil, errors.Wrap(encErr, "writing lock file")
		}
		if closeErr := f.Close(); closeErr != nil {
			os.Remove(lockPath)
			return nil, nil, errors.Wrap(closeErr, "closing lock file")
		}
		return &Lock{path: lockPath, pid: pid}, nil, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return nil, nil, errors.Wrap(err, "creating lock file")
	}

	existing, readErr := read(lockPath)
	if readErr != nil {
		// Unreadable or concurrently removed; treat as busy with unknown
		// holder and let the retry loop take another look.
		return nil, &BusyError{Path: lockPath}, nil
	}

	if time.Since(existing.AcquiredAt) > StaleThreshold {
		// Presumed crashed holder; reclaim.
		if rmErr := os.Remove(lockPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, nil, errors.Wrap(rmErr, "reclaiming stale lock")
		}
		return nil, &BusyError{PID: existing.PID, Command: existing.Command, Path: lockPath}, nil
	}

	return nil, &BusyError{PID: existing.PID, Command: existing.Command, Path: lockPath}, nil
}

// read parses an existing lock file.
func read(lockPath string) (contents, error) {
	var c contents
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Release deletes the lock file. It is idempotent: releasing twice, after
// the file has been removed externally, or when the file now belongs to a
// different process is a no-op, never an error.
func (l *Lock) Release() {
	if l == nil || l.released {
		return
	}
	l.released = true

	existing, err := read(l.path)
	if err != nil {
		return
	}
	if existing.PID != l.pid {
		// A later process reclaimed the file; it is not ours to delete.
		return
	}
	os.Remove(l.path)
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
