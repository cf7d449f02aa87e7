package fsutil

import "testing"

func TestAcquireFileLock_BlocksConcurrentAcquire(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireFileLock(dir, "episode-720p.mp4")
	if err != nil {
		t.Fatalf("acquire first lock: %v", err)
	}
	defer func() {
		_ = lock.Release()
	}()

	if _, err := AcquireFileLock(dir, "episode-720p.mp4"); err == nil {
		t.Fatalf("expected second acquire to fail")
	}

	// A different file in the same directory is independent.
	other, err := AcquireFileLock(dir, "episode-1080p.mp4")
	if err != nil {
		t.Fatalf("acquire lock for different file: %v", err)
	}
	if err := other.Release(); err != nil {
		t.Fatalf("release other lock: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("release lock: %v", err)
	}

	lock2, err := AcquireFileLock(dir, "episode-720p.mp4")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if err := lock2.Release(); err != nil {
		t.Fatalf("release second lock: %v", err)
	}
}
