//go:build !windows

package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const lockFile = "index.lock"

// Lock is an exclusive flock-backed lock on the project's state
// directory, held for the duration of an indexing pass.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock takes the lock non-blockingly; it fails with the holder's
// PID when another indexing process is already running.
func AcquireLock(stateDir string) (*Lock, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	path := filepath.Join(stateDir, lockFile)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		holder := ""
		if content, readErr := os.ReadFile(path); readErr == nil {
			holder = strings.TrimSpace(string(content))
		}
		file.Close()
		if holder != "" {
			return nil, fmt.Errorf("index locked by another process (PID %s)", holder)
		}
		return nil, fmt.Errorf("index locked by another process")
	}

	release := func() {
		syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		file.Close()
	}
	if err := file.Truncate(0); err != nil {
		release()
		return nil, fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		release()
		return nil, fmt.Errorf("seek lock file: %w", err)
	}
	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		release()
		return nil, fmt.Errorf("record holder pid: %w", err)
	}

	return &Lock{path: path, file: file}, nil
}

// Release drops the lock and removes the file. Safe on a nil receiver.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	os.Remove(l.path)
}
