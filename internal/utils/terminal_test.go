package utils

import (
	"bytes"
	"errors"
	"os"
	"testing"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"
)

func TestReadPassphraseRequiresTerminal(t *testing.T) {
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe failed: %v", err)
	}
	defer reader.Close()
	defer writer.Close()

	var prompt bytes.Buffer
	_, err = readPassphrase(int(reader.Fd()), "Enter passphrase: ", &prompt)
	if !errors.Is(err, kerrors.ErrNotATerminal) {
		t.Fatalf("Expected ErrNotATerminal, got %v", err)
	}
	if prompt.Len() != 0 {
		t.Errorf("Prompt was written for a non-terminal: %q", prompt.String())
	}
}

func TestAcquireTerminalFailsOnPipe(t *testing.T) {
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe failed: %v", err)
	}
	defer reader.Close()
	defer writer.Close()

	guard, err := acquireTerminal(int(reader.Fd()))
	if err == nil {
		guard.Release()
		t.Fatal("Expected an error saving the state of a pipe")
	}
}
