package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hocktide/v-c-tool/internal/audit"
	"github.com/hocktide/v-c-tool/internal/configs"
	"github.com/hocktide/v-c-tool/internal/envelope"
	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	"github.com/hocktide/v-c-tool/internal/suite"
)

// createKeypair runs keygen with a fast work factor and fails the test on error.
func createKeypair(t *testing.T, path, passphrase string) {
	t.Helper()

	answers := []string{passphrase}
	if passphrase != "" {
		answers = append(answers, passphrase)
	}
	scriptPassphrases(t, answers...)

	output, err := runCLI(t, "keygen", "-o", path, "-R", "2")
	if err != nil {
		t.Fatalf("keygen failed: %v\nOutput: %s", err, output)
	}
}

func TestKeygenCommand(t *testing.T) {
	t.Run("Unencrypted", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		prompts := scriptPassphrases(t, "")

		output, err := runCLI(t, "keygen")
		if err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, output)
		}

		if !reflect.DeepEqual(*prompts, []string{"Enter passphrase: "}) {
			t.Errorf("Unexpected prompts: %q", *prompts)
		}
		if !strings.Contains(output, "Created keypair certificate") || !strings.Contains(output, configs.DefaultOutput) {
			t.Errorf("Expected success message not found in output: %s", output)
		}

		data, err := os.ReadFile(filepath.Join(dir, configs.DefaultOutput))
		if err != nil {
			t.Fatalf("Default output was not written: %v", err)
		}
		if envelope.IsEncrypted(data) {
			t.Error("Certificate was encrypted with an empty passphrase")
		}
	})

	t.Run("Encrypted", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		prompts := scriptPassphrases(t, "secret", "secret")

		output, err := runCLI(t, "keygen", "-o", "alice.cert", "-R", "3")
		if err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, output)
		}

		want := []string{"Enter passphrase: ", "Verify passphrase: "}
		if !reflect.DeepEqual(*prompts, want) {
			t.Errorf("Expected prompts %q, got %q", want, *prompts)
		}
		if !strings.Contains(output, "3 rounds") {
			t.Errorf("Expected round count in output: %s", output)
		}

		data, err := os.ReadFile(filepath.Join(dir, "alice.cert"))
		if err != nil {
			t.Fatalf("Output was not written: %v", err)
		}
		if !envelope.IsEncrypted(data) {
			t.Error("Certificate was not encrypted")
		}
	})

	t.Run("PassphraseMismatch", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		scriptPassphrases(t, "secret", "secrets")

		output, err := runCLI(t, "keygen", "-R", "2")
		if !errors.Is(err, kerrors.ErrPassphraseMismatch) {
			t.Fatalf("Expected ErrPassphraseMismatch, got %v", err)
		}
		if !strings.Contains(output, "passphrases do not match") {
			t.Errorf("Expected mismatch message in output: %s", output)
		}
		if _, err := os.Stat(filepath.Join(dir, configs.DefaultOutput)); !os.IsNotExist(err) {
			t.Error("Output was written after a mismatch")
		}
	})

	t.Run("RefusesToClobber", func(t *testing.T) {
		setupTestEnvironment(t)
		createKeypair(t, "alice.cert", "")
		scriptPassphrases(t)

		output, err := runCLI(t, "keygen", "-o", "alice.cert")
		if !errors.Is(err, kerrors.ErrFileExists) {
			t.Fatalf("Expected ErrFileExists, got %v", err)
		}
		if !strings.Contains(output, "--output") {
			t.Errorf("Expected hint in output: %s", output)
		}
	})

	t.Run("ZeroRounds", func(t *testing.T) {
		setupTestEnvironment(t)
		scriptPassphrases(t)

		_, err := runCLI(t, "keygen", "-R", "0")
		if !errors.Is(err, kerrors.ErrInvalidRounds) {
			t.Fatalf("Expected ErrInvalidRounds, got %v", err)
		}
	})

	t.Run("UnknownSuite", func(t *testing.T) {
		setupTestEnvironment(t)
		scriptPassphrases(t)

		_, err := runCLI(t, "keygen", "--suite", "rot13")
		if !errors.Is(err, kerrors.ErrUnknownSuite) {
			t.Fatalf("Expected ErrUnknownSuite, got %v", err)
		}
	})
}

func TestPubkeyCommand(t *testing.T) {
	t.Run("DefaultOutput", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		createKeypair(t, "alice.cert", "secret")
		prompts := scriptPassphrases(t, "secret")

		output, err := runCLI(t, "pubkey", "-k", "alice.cert")
		if err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, output)
		}
		if len(*prompts) != 1 {
			t.Errorf("Expected one prompt, got %q", *prompts)
		}
		if _, err := os.Stat(filepath.Join(dir, "alice.cert.pub")); err != nil {
			t.Errorf("Public certificate was not written: %v", err)
		}
		if !strings.Contains(output, "Wrote public certificate") {
			t.Errorf("Expected success message in output: %s", output)
		}
	})

	t.Run("WrongPassphrase", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		createKeypair(t, "alice.cert", "secret")
		scriptPassphrases(t, "guess")

		output, err := runCLI(t, "pubkey", "-k", "alice.cert")
		if !errors.Is(err, kerrors.ErrVerification) {
			t.Fatalf("Expected ErrVerification, got %v", err)
		}
		if !strings.Contains(output, "Verification failed") {
			t.Errorf("Expected generic failure message in output: %s", output)
		}
		if _, err := os.Stat(filepath.Join(dir, "alice.cert.pub")); !os.IsNotExist(err) {
			t.Error("Public certificate written after a failed decrypt")
		}
	})

	t.Run("DamagedFile", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		path := filepath.Join(dir, "short.cert")
		if err := os.WriteFile(path, []byte("ENC\x00\x00"), 0600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		scriptPassphrases(t, "secret")

		output, err := runCLI(t, "pubkey", "-k", "short.cert")
		if !errors.Is(err, kerrors.ErrTooSmall) {
			t.Fatalf("Expected ErrTooSmall, got %v", err)
		}
		if !strings.Contains(output, "Verification failed") {
			t.Errorf("Expected generic failure message in output: %s", output)
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		setupTestEnvironment(t)
		scriptPassphrases(t)

		_, err := runCLI(t, "pubkey")
		if !errors.Is(err, kerrors.ErrMissingKeyFile) {
			t.Fatalf("Expected ErrMissingKeyFile, got %v", err)
		}
	})

	t.Run("StdinRequiresOutput", func(t *testing.T) {
		setupTestEnvironment(t)
		scriptPassphrases(t)
		withStdin(t, nil)

		output, err := runCLI(t, "pubkey", "-k", "-")
		if err == nil {
			t.Fatal("Expected an error without --output")
		}
		if !strings.Contains(output, "--output is required") {
			t.Errorf("Expected message in output: %s", output)
		}
	})

	t.Run("Stdin", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		createKeypair(t, "alice.cert", "secret")

		data, err := os.ReadFile(filepath.Join(dir, "alice.cert"))
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		withStdin(t, data)
		scriptPassphrases(t, "secret")

		output, err := runCLI(t, "pubkey", "-k", "-", "-o", "alice.pub")
		if err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, output)
		}
		if _, err := os.Stat(filepath.Join(dir, "alice.pub")); err != nil {
			t.Errorf("Public certificate was not written: %v", err)
		}
	})
}

func TestInspectCommand(t *testing.T) {
	t.Run("Keypair", func(t *testing.T) {
		setupTestEnvironment(t)
		createKeypair(t, "alice.cert", "secret")
		scriptPassphrases(t, "secret")

		output, err := runCLI(t, "inspect", "alice.cert")
		if err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, output)
		}
		for _, want := range []string{"keypair", "1.0", "velo-v1", "2 rounds", "Signing key"} {
			if !strings.Contains(output, want) {
				t.Errorf("Expected %q in output: %s", want, output)
			}
		}
	})

	t.Run("HeaderOnly", func(t *testing.T) {
		setupTestEnvironment(t)
		createKeypair(t, "alice.cert", "secret")
		prompts := scriptPassphrases(t)

		output, err := runCLI(t, "inspect", "-k", "alice.cert", "--header-only")
		if err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, output)
		}
		if len(*prompts) != 0 {
			t.Errorf("Unexpected prompts: %q", *prompts)
		}
		if !strings.Contains(output, "2 rounds") || strings.Contains(output, "Signing key") {
			t.Errorf("Unexpected header-only output: %s", output)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		setupTestEnvironment(t)
		createKeypair(t, "alice.cert", "")
		scriptPassphrases(t)

		if _, err := runCLI(t, "pubkey", "-k", "alice.cert"); err != nil {
			t.Fatalf("pubkey failed: %v", err)
		}

		output, err := runCLI(t, "inspect", "alice.cert.pub", "--json")
		if err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, output)
		}

		var got inspectOutput
		if err := json.Unmarshal([]byte(output), &got); err != nil {
			t.Fatalf("Output is not JSON: %v\n%s", err, output)
		}
		if got.Type != "public" || got.Encrypted || len(got.PublicSigningKey) != 64 {
			t.Errorf("Unexpected result: %+v", got)
		}
	})

	t.Run("NoCertificate", func(t *testing.T) {
		setupTestEnvironment(t)
		scriptPassphrases(t)

		if _, err := runCLI(t, "inspect"); err == nil {
			t.Error("Expected an error without a certificate")
		}
	})
}

func TestPasswdCommand(t *testing.T) {
	t.Run("Change", func(t *testing.T) {
		setupTestEnvironment(t)
		createKeypair(t, "alice.cert", "old")
		prompts := scriptPassphrases(t, "old", "new", "new")

		output, err := runCLI(t, "passwd", "-k", "alice.cert", "-R", "4")
		if err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, output)
		}
		want := []string{"Enter current passphrase: ", "Enter new passphrase: ", "Verify new passphrase: "}
		if !reflect.DeepEqual(*prompts, want) {
			t.Errorf("Expected prompts %q, got %q", want, *prompts)
		}
		if !strings.Contains(output, "Changed passphrase") {
			t.Errorf("Expected success message in output: %s", output)
		}

		scriptPassphrases(t, "new")
		output, err = runCLI(t, "inspect", "alice.cert")
		if err != nil {
			t.Fatalf("inspect with the new passphrase failed: %v\nOutput: %s", err, output)
		}
		if !strings.Contains(output, "4 rounds") {
			t.Errorf("Expected new round count in output: %s", output)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		createKeypair(t, "alice.cert", "old")
		scriptPassphrases(t, "old", "")

		output, err := runCLI(t, "passwd", "-k", "alice.cert", "-R", "2")
		if err != nil {
			t.Fatalf("Command failed: %v\nOutput: %s", err, output)
		}
		if !strings.Contains(output, "now stored unencrypted") {
			t.Errorf("Expected warning in output: %s", output)
		}

		data, err := os.ReadFile(filepath.Join(dir, "alice.cert"))
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if envelope.IsEncrypted(data) {
			t.Error("Certificate is still encrypted")
		}
	})

	t.Run("Stdin", func(t *testing.T) {
		setupTestEnvironment(t)
		scriptPassphrases(t)

		if _, err := runCLI(t, "passwd", "-k", "-"); err == nil {
			t.Error("Expected an error for a key read from stdin")
		}
	})
}

func TestConfigCommands(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "config", "set", "rounds", "1234")
	if err != nil {
		t.Fatalf("config set failed: %v\nOutput: %s", err, output)
	}

	output, err = runCLI(t, "config", "get", "rounds")
	if err != nil {
		t.Fatalf("config get failed: %v", err)
	}
	if strings.TrimSpace(output) != "1234" {
		t.Errorf("Expected 1234, got %q", output)
	}

	output, err = runCLI(t, "config", "show", "--json")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(output), &values); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, output)
	}
	if values["rounds"] != "1234" || values["output"] != configs.DefaultOutput {
		t.Errorf("Unexpected config: %v", values)
	}

	if _, err := runCLI(t, "config", "set", "rounds", "0"); err == nil {
		t.Error("Expected an error setting rounds to 0")
	}
	if _, err := runCLI(t, "config", "set", "colour", "blue"); err == nil {
		t.Error("Expected an error for an unknown key")
	}

	output, err = runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(output, "1234") {
		t.Errorf("Failed set changed the config: %s", output)
	}
}

func TestConfigDefaultsApply(t *testing.T) {
	dir := setupTestEnvironment(t)

	if _, err := runCLI(t, "config", "set", "output", "default.cert"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if _, err := runCLI(t, "config", "set", "rounds", "5"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	scriptPassphrases(t, "pw", "pw")
	output, err := runCLI(t, "keygen")
	if err != nil {
		t.Fatalf("keygen failed: %v\nOutput: %s", err, output)
	}

	data, err := os.ReadFile(filepath.Join(dir, "default.cert"))
	if err != nil {
		t.Fatalf("Configured output was not used: %v", err)
	}
	rounds, err := envelope.ReadRounds(mustDefaultSuite(t), data)
	if err != nil {
		t.Fatalf("ReadRounds failed: %v", err)
	}
	if rounds != 5 {
		t.Errorf("Expected configured rounds 5, got %d", rounds)
	}
}

func TestLogCommand(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "log")
	if err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if !strings.Contains(output, "No history entries found") {
		t.Errorf("Expected empty message: %s", output)
	}

	createKeypair(t, "alice.cert", "")
	scriptPassphrases(t)
	if _, err := runCLI(t, "pubkey", "-k", "alice.cert"); err != nil {
		t.Fatalf("pubkey failed: %v", err)
	}

	output, err = runCLI(t, "log", "--json")
	if err != nil {
		t.Fatalf("log failed: %v", err)
	}
	var entries []audit.Entry
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, output)
	}
	if len(entries) != 2 || entries[0].Operation != "keygen" || entries[1].Operation != "pubkey" {
		t.Errorf("Unexpected entries: %+v", entries)
	}

	output, err = runCLI(t, "log", "--operation", "pubkey")
	if err != nil {
		t.Fatalf("log failed: %v", err)
	}
	if strings.Contains(output, "keygen") || !strings.Contains(output, "alice.cert.pub") {
		t.Errorf("Unexpected filtered output: %s", output)
	}
}

func mustDefaultSuite(t *testing.T) suite.Suite {
	t.Helper()
	s, err := suite.Lookup(suite.Default)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	return s
}

func TestRootCommandBanner(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t)
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if !strings.Contains(output, "vctool --help") {
		t.Errorf("Expected help hint in output: %s", output)
	}
}
