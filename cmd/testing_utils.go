// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up test environments,
// capturing output and scripting passphrase prompts.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"testing"

	"github.com/hocktide/v-c-tool/internal/configs"
	logger "github.com/hocktide/v-c-tool/internal/logging"
	"github.com/hocktide/v-c-tool/internal/secret"

	"github.com/spf13/cobra"
)

// setupTestEnvironment moves into a temporary directory, points the user
// config at another one and resets all command state. It returns the
// working directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get original working directory: %v", err)
	}
	originalConfigsPath := configs.UserSettings.ConfigsPath
	originalRead, originalReadTTY := readPassphrase, readPassphraseFromTTY

	tempDir := t.TempDir()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	configs.UserSettings.ConfigsPath = t.TempDir()

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		configs.UserSettings.ConfigsPath = originalConfigsPath
		readPassphrase, readPassphraseFromTTY = originalRead, originalReadTTY
		ResetGlobalState()
	})

	ResetGlobalState()
	return tempDir
}

// scriptPassphrases makes every prompt answer with the next value in
// answers and returns the prompts seen so far. Running out of answers
// fails the test.
func scriptPassphrases(t *testing.T, answers ...string) *[]string {
	t.Helper()

	prompts := &[]string{}
	next := func(prompt string) (*secret.Buffer, error) {
		*prompts = append(*prompts, prompt)
		if len(answers) == 0 {
			t.Errorf("Unexpected passphrase prompt %q", prompt)
			return secret.New(0)
		}
		answer := answers[0]
		answers = answers[1:]
		return secret.NewFromBytes([]byte(answer))
	}

	readPassphrase = next
	readPassphraseFromTTY = next
	return prompts
}

// withStdin replaces os.Stdin with a file holding content.
func withStdin(t *testing.T, content []byte) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatalf("Failed to create stdin file: %v", err)
	}
	if _, err := f.Write(content); err != nil {
		t.Fatalf("Failed to write stdin file: %v", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Failed to rewind stdin file: %v", err)
	}

	original := os.Stdin
	os.Stdin = f
	t.Cleanup(func() {
		os.Stdin = original
		f.Close()
	})
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// runCLI executes vctool with args and returns its combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	ResetGlobalState()
	Logger = logger.Logger{}

	return captureOutput(func() error {
		cmd := createTestCLI(args...)
		return cmd.Execute()
	})
}

// createTestCLI returns the root command set up to run args. A nil slice
// would make cobra fall back to the test binary's own arguments.
func createTestCLI(args ...string) *cobra.Command {
	if args == nil {
		args = []string{}
	}
	RootCmd.SetArgs(args)
	return RootCmd
}
