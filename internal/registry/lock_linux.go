// SPDX-License-Identifier: MPL-2.0

//go:build linux

package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// idLockFileName is the well-known lock file guarding global ID
// assignment. The zero-byte file is harmless if orphaned — the kernel
// releases the flock automatically when the fd is closed (including on
// process crash).
const idLockFileName = ".registry.lock"

// idLock holds a blocking exclusive flock on a well-known file inside the
// central registry directory, serializing the read-modify-write that
// assigns global command IDs across concurrent router invocations.
type idLock struct {
	file *os.File
}

// acquireIDLock opens (or creates) the lock file and acquires a blocking
// exclusive flock. The call blocks until the lock is available.
func acquireIDLock(centralDir string) (*idLock, error) {
	if err := os.MkdirAll(centralDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", centralDir, err)
	}
	lockPath := filepath.Join(centralDir, idLockFileName)

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", lockPath, err)
	}

	return &idLock{file: f}, nil
}

// Release unlocks the flock and closes the file descriptor. Safe to call
// multiple times — subsequent calls are no-ops.
func (l *idLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}
