//go:build unix

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// allocate maps anonymous memory outside the Go heap so the garbage
// collector can never copy the secret. Locking against swap is best-effort:
// RLIMIT_MEMLOCK is frequently tiny for unprivileged users and in containers.
func allocate(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}

	_ = unix.Mlock(data)
	excludeFromCoreDump(data)

	return data, nil
}

func release(data []byte) error {
	_ = unix.Munlock(data)
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("secret: munmap failed: %w", err)
	}
	return nil
}
