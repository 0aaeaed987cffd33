package lockfile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func lockPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "oneclick.lock")
}

func TestAcquireWritesRecordAndReleaseRemovesFile(t *testing.T) {
	path := lockPath(t)

	h, err := Acquire(path, time.Minute)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("parse lock record: %v", err)
	}
	if rec.PID != os.Getpid() {
		t.Errorf("record pid: got %d, want %d", rec.PID, os.Getpid())
	}
	if rec.Stolen {
		t.Error("fresh lock must not be marked stolen")
	}

	if err := h.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("lock file should be gone after release")
	}

	// Second release is a no-op.
	if err := h.Release(); err != nil {
		t.Errorf("repeated release: %v", err)
	}
}

func TestAcquireReportsHeldWithinTTL(t *testing.T) {
	path := lockPath(t)

	h, err := Acquire(path, time.Minute)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer h.Release()

	if _, err := Acquire(path, time.Minute); !errors.Is(err, ErrHeld) {
		t.Fatalf("second acquire: got %v, want ErrHeld", err)
	}
}

func TestAcquireStealsStaleLock(t *testing.T) {
	path := lockPath(t)

	h, err := Acquire(path, time.Minute)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	_ = h // holder "crashed": never released

	// Age the file past the TTL.
	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("age lock file: %v", err)
	}

	h2, err := Acquire(path, time.Minute)
	if err != nil {
		t.Fatalf("steal: %v", err)
	}
	defer h2.Release()

	data, _ := os.ReadFile(path)
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("parse stolen record: %v", err)
	}
	if !rec.Stolen {
		t.Error("stolen lock must carry the stolen flag")
	}
}

func TestConcurrentAcquireYieldsSingleWinner(t *testing.T) {
	path := lockPath(t)

	const contenders = 10
	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Acquire(path, time.Minute)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, held := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrHeld):
			held++
		default:
			t.Errorf("unexpected acquire error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("got %d winners, want exactly 1", wins)
	}
	if held != contenders-1 {
		t.Errorf("got %d held, want %d", held, contenders-1)
	}
}

func TestStaleTakeoverSingleWinnerUnderContention(t *testing.T) {
	path := lockPath(t)

	if _, err := Acquire(path, time.Minute); err != nil {
		t.Fatalf("seed lock: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("age lock file: %v", err)
	}

	const contenders = 8
	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Acquire(path, time.Minute)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrHeld) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("got %d takeover winners, want exactly 1", wins)
	}
}
