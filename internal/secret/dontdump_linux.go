package secret

import "golang.org/x/sys/unix"

// MADV_DONTDUMP is not supported on every kernel; the secret is still
// zeroed on Close when it fails.
func excludeFromCoreDump(data []byte) {
	_ = unix.Madvise(data, unix.MADV_DONTDUMP)
}
