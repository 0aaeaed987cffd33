// Package lockfile provides single-flight protection for the one-click
// trigger across process restarts, backed by an exclusive-create lock file.
//
// The lock is a single-host construct. Two contenders that both observe a
// stale lock can in rare cases both win the takeover; the cost of that race
// is a duplicate run of idempotent work, which is accepted. Multi-host
// deployments need an external coordination service.
package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrHeld reports that a live lock already exists. It is the normal skip
// outcome for an overlapping trigger, not a failure.
var ErrHeld = errors.New("lock already held")

// Record is the diagnostic payload written into the lock file. Nothing
// machine-parses it besides tests; staleness is judged from file mtime.
type Record struct {
	PID       int       `json:"pid"`
	Host      string    `json:"host"`
	CreatedAt time.Time `json:"created_at"`
	Stolen    bool      `json:"stolen,omitempty"`
}

// Handle represents a held lock. Release removes the file; it is safe to
// call at most once and callers defer it immediately after Acquire.
type Handle struct {
	path    string
	release sync.Once
	err     error
}

// Acquire takes the lock at path, or steals it if the existing lock file is
// older than ttl (its holder is presumed crashed). A live lock yields
// ErrHeld immediately; acquisition never blocks.
func Acquire(path string, ttl time.Duration) (*Handle, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	if err := create(path, false); err == nil {
		return &Handle{path: path}, nil
	} else if !os.IsExist(err) {
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	// Serialize staleness checks within this process so in-process
	// contenders cannot remove each other's freshly stolen lock. The
	// equivalent cross-process race remains and is accepted.
	stealMu.Lock()
	defer stealMu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Holder released between our create and stat; treat as held
			// and let the next trigger through.
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("stat lock file: %w", err)
	}
	if age := time.Since(info.ModTime()); age <= ttl {
		return nil, ErrHeld
	}

	// Stale: the holder is presumed dead. Remove and retry exactly once;
	// losing the retry means another contender won the steal.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale lock: %w", err)
	}
	if err := create(path, true); err != nil {
		if os.IsExist(err) {
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("recreate lock file: %w", err)
	}
	return &Handle{path: path}, nil
}

var stealMu sync.Mutex

// Release removes the lock file. Subsequent calls are no-ops returning the
// first result.
func (h *Handle) Release() error {
	h.release.Do(func() {
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			h.err = fmt.Errorf("remove lock file: %w", err)
		}
	})
	return h.err
}

func create(path string, stolen bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	host, _ := os.Hostname()
	rec := Record{
		PID:       os.Getpid(),
		Host:      host,
		CreatedAt: time.Now().UTC(),
		Stolen:    stolen,
	}
	if err := json.NewEncoder(f).Encode(&rec); err != nil {
		os.Remove(path)
		return fmt.Errorf("write lock record: %w", err)
	}
	return nil
}
