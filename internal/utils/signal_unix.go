//go:build unix

package utils

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

var terminationSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}

// reraise delivers sig to this process again with the default disposition,
// so the exit status reflects the signal.
func reraise(sig os.Signal) {
	signal.Reset(sig)
	if number, ok := sig.(syscall.Signal); ok {
		_ = unix.Kill(unix.Getpid(), number)
	}
}
