package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/ui"
	"github.com/hocktide/v-c-tool/internal/utils"
	"github.com/hocktide/v-c-tool/internal/workflows"

	"github.com/briandowns/spinner"
)

// Passphrase sources. Tests replace these with scripted answers.
var (
	readPassphrase        = utils.ReadPassphrase
	readPassphraseFromTTY = utils.ReadPassphraseFromTTY
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	err := s.Color("cyan")
	if err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if !verbose && !debug {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if !verbose && !debug {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// progress shows a spinner while a key is being derived. The spinner is
// only started once a non-empty passphrase has been read, and it is
// stopped before every prompt so the two never share the terminal.
type progress struct {
	message string
	spinner *spinner.Spinner
	cleanup func()
}

func newProgress(message string) *progress {
	return &progress{message: message}
}

// wrap returns a PassphraseFunc that pauses the spinner around fn.
func (p *progress) wrap(fn workflows.PassphraseFunc) workflows.PassphraseFunc {
	return func() (*secret.Buffer, error) {
		p.stop()
		buffer, err := fn()
		if err == nil && buffer.Len() > 0 {
			p.spinner, p.cleanup = startSpinner(p.message, verbose)
		}
		return buffer, err
	}
}

func (p *progress) stop() {
	if p.spinner == nil {
		return
	}
	p.cleanup()
	p.spinner = nil
	p.cleanup = nil
}

// finish stops the spinner and prints msg.
func (p *progress) finish(msg string) {
	if p.spinner == nil {
		if msg != "" {
			fmt.Print(ui.EnsureNewline(msg))
		}
		return
	}
	p.spinner.FinalMSG = msg
	p.stop()
}

// promptPassphrase reads one passphrase from the terminal.
func promptPassphrase(prompt string, fromTTY bool) workflows.PassphraseFunc {
	return func() (*secret.Buffer, error) {
		if fromTTY {
			return readPassphraseFromTTY(prompt)
		}
		return readPassphrase(prompt)
	}
}

// promptNewPassphrase reads a passphrase and, if it is non-empty, asks for
// it a second time. The two entries are compared in constant time.
func promptNewPassphrase(prompt, verifyPrompt string) workflows.PassphraseFunc {
	return func() (*secret.Buffer, error) {
		first, err := readPassphrase(prompt)
		if err != nil {
			return nil, err
		}
		if first.Len() == 0 {
			return first, nil
		}

		second, err := readPassphrase(verifyPrompt)
		if err != nil {
			first.Close()
			return nil, err
		}
		defer second.Close()

		if !first.Equal(second.Bytes()) {
			first.Close()
			return nil, kerrors.ErrPassphraseMismatch
		}
		return first, nil
	}
}

// isVerificationError reports whether err came out of decrypting an
// envelope. All such failures are shown the same way.
func isVerificationError(err error) bool {
	return errors.Is(err, kerrors.ErrVerification) ||
		errors.Is(err, kerrors.ErrTooSmall) ||
		errors.Is(err, kerrors.ErrBadMagic)
}

// formatError formats a workflow error for display to the user.
func formatError(err error) string {
	switch {
	case isVerificationError(err):
		return ui.Error.Sprint("✗") + " Verification failed\n" +
			ui.Info.Sprint("→") + " Check the passphrase, or the file may be damaged"

	case errors.Is(err, kerrors.ErrFileExists):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Remove it or choose another file with " + ui.Flag.Sprint("--output")

	case errors.Is(err, kerrors.ErrMissingKeyFile):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Pass a keypair certificate with " + ui.Flag.Sprint("--key")

	case errors.Is(err, kerrors.ErrInsecurePermissions):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("chmod 600 "+keyFlag)

	case errors.Is(err, kerrors.ErrNotATerminal):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Run vctool from an interactive terminal to enter a passphrase"

	case errors.Is(err, kerrors.ErrNotKeypair):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " This command needs the keypair certificate, not the public one"

	default:
		return ui.Error.Sprint("✗") + " " + err.Error()
	}
}

// fail shows err through the progress spinner and returns it marked as
// shown, so that the exit code is set without printing it twice.
func fail(p *progress, err error) error {
	if isVerificationError(err) {
		Logger.Debugf("Decrypt failed: %v", err)
	}
	if p != nil {
		p.stop()
	}
	fmt.Fprintln(os.Stderr, formatError(err))
	return &shownError{err: err}
}
