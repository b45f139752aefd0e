//go:build !unix

package utils

import (
	"os"
)

var terminationSignals = []os.Signal{os.Interrupt}

func reraise(os.Signal) {
	os.Exit(1)
}
