package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileLockOwnerFile = "owner.json"

// FileLock guards one output file so two concurrent invocations cannot
// write the same episode.
type FileLock struct {
	lockDir string
}

type fileLockOwner struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

// AcquireFileLock takes a mkdir-based lock next to the named output file.
func AcquireFileLock(dir, name string) (FileLock, error) {
	target := strings.TrimSpace(dir)
	if target == "" {
		return FileLock{}, fmt.Errorf("output directory is required")
	}

	lockDir := filepath.Join(target, "."+name+".lock")
	if err := os.Mkdir(lockDir, 0o755); err != nil {
		if os.IsExist(err) {
			ownerPath := filepath.Join(lockDir, fileLockOwnerFile)
			var owner fileLockOwner
			if readErr := ReadJSON(ownerPath, &owner); readErr == nil && owner.PID > 0 && owner.CreatedAt != "" {
				return FileLock{}, fmt.Errorf(
					"output file is locked: %s (pid=%d created_at=%s host=%s)",
					filepath.Join(target, name), owner.PID, owner.CreatedAt, owner.Hostname,
				)
			}
			return FileLock{}, fmt.Errorf("output file is locked: %s", filepath.Join(target, name))
		}
		return FileLock{}, fmt.Errorf("acquire lock for %s: %w", target, err)
	}

	owner := fileLockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	ownerPath := filepath.Join(lockDir, fileLockOwnerFile)
	if err := WriteJSON(ownerPath, owner); err != nil {
		_ = os.Remove(lockDir)
		return FileLock{}, fmt.Errorf("write lock owner for %s: %w", target, err)
	}

	return FileLock{lockDir: lockDir}, nil
}

func (l FileLock) Release() error {
	if strings.TrimSpace(l.lockDir) == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, fileLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release lock %s: %w", l.lockDir, err)
	}
	return nil
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
