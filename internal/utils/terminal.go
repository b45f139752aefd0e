package utils

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sync"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	"github.com/hocktide/v-c-tool/internal/secret"

	"golang.org/x/term"
)

// terminalGuard holds a saved terminal state and puts it back when released,
// or when the process is interrupted while the guard is held.
type terminalGuard struct {
	fd      int
	state   *term.State
	signals chan os.Signal
	done    chan struct{}
	once    sync.Once
}

// acquireTerminal saves the state of the terminal on fd. The caller must
// Release the guard on every return path.
func acquireTerminal(fd int) (*terminalGuard, error) {
	state, err := term.GetState(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to save terminal state: %w", err)
	}

	guard := &terminalGuard{
		fd:      fd,
		state:   state,
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	signal.Notify(guard.signals, terminationSignals...)
	go guard.watch()

	return guard, nil
}

func (g *terminalGuard) watch() {
	select {
	case sig := <-g.signals:
		g.Release()
		reraise(sig)
	case <-g.done:
	}
}

// Release restores the terminal and stops watching for signals.
func (g *terminalGuard) Release() {
	g.once.Do(func() {
		signal.Stop(g.signals)
		close(g.done)
		_ = term.Restore(g.fd, g.state)
	})
}

// readPassphrase prompts on out and reads a line from fd with echo off.
// The returned buffer owns the passphrase; the heap copy is zeroed.
func readPassphrase(fd int, prompt string, out io.Writer) (*secret.Buffer, error) {
	if !term.IsTerminal(fd) {
		return nil, kerrors.ErrNotATerminal
	}

	guard, err := acquireTerminal(fd)
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	fmt.Fprint(out, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		secret.Zero(passphrase)
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	buffer, err := secret.NewFromBytes(passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrAllocation, err)
	}
	return buffer, nil
}

// ReadPassphrase prompts the user for a passphrase on stdin without echoing
// input. Returns ErrNotATerminal if stdin is not a terminal.
func ReadPassphrase(prompt string) (*secret.Buffer, error) {
	return readPassphrase(int(os.Stdin.Fd()), prompt, os.Stderr)
}

// ReadPassphraseFromTTY prompts the user for a passphrase from /dev/tty (or
// CON on Windows). Use it when stdin carries other input, such as a key
// certificate piped in with --key -.
func ReadPassphraseFromTTY(prompt string) (*secret.Buffer, error) {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %v", kerrors.ErrNotATerminal, ttyPath(), err)
	}
	defer tty.Close()

	return readPassphrase(int(tty.Fd()), prompt, os.Stderr)
}

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}
