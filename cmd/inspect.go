package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/ui"
	"github.com/hocktide/v-c-tool/internal/utils"
	"github.com/hocktide/v-c-tool/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	inspectHeaderOnly bool
	inspectJSON       bool
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectHeaderOnly, "header-only", false, "show the encryption header without asking for a passphrase")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output in JSON format")
}

// resetInspectCommandState resets the inspect command's global state for testing.
func resetInspectCommandState() {
	inspectHeaderOnly = false
	inspectJSON = false
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [certificate]",
	Short: "Show the public contents of a certificate",
	Long: `Shows what a keypair or public certificate contains: its type, suite,
version, entity id and public key fingerprints, and whether it is encrypted.
Private keys are never shown.

The certificate is given as an argument or with --key. If it is encrypted
you are asked for its passphrase, unless --header-only is set.

Examples:
  vctool inspect alice.cert.pub
  vctool inspect -k alice.cert
  vctool inspect alice.cert --header-only
  vctool inspect alice.cert.pub --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

// inspectOutput is the JSON form of an inspect result.
type inspectOutput struct {
	Path                string `json:"path"`
	Encrypted           bool   `json:"encrypted"`
	Rounds              uint32 `json:"rounds,omitempty"`
	Type                string `json:"type"`
	Version             string `json:"version,omitempty"`
	Suite               string `json:"suite,omitempty"`
	EntityID            string `json:"entity_id,omitempty"`
	PublicEncryptionKey string `json:"public_encryption_key,omitempty"`
	PublicSigningKey    string `json:"public_signing_key,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting inspect command")
	Logger.Debugf("Flags: header-only=%t, json=%t", inspectHeaderOnly, inspectJSON)

	resolved, err := resolveSettings(cmd)
	if err != nil {
		return fail(nil, err)
	}

	path := keyFlag
	if len(args) == 1 {
		path = args[0]
	}

	opts := workflows.InspectOptions{
		Suite:      resolved.suite,
		Path:       path,
		HeaderOnly: inspectHeaderOnly,
		MaxRounds:  resolved.maxRounds,
	}

	fromStdin := path == "-"
	switch {
	case path == "":
		return fail(nil, fmt.Errorf("no certificate given; pass it as an argument or with --key"))
	case fromStdin:
		data, err := utils.ReadStdin()
		if err != nil {
			return fail(nil, err)
		}
		defer secret.Zero(data)
		opts.Data = data
	}

	p := newProgress("Decrypting certificate...")
	opts.Passphrase = p.wrap(promptPassphrase("Enter passphrase: ", fromStdin))

	result, err := workflows.Inspect(context.Background(), opts)
	p.stop()
	if err != nil {
		return fail(nil, err)
	}

	if inspectJSON {
		return outputInspectJSON(result)
	}
	outputInspectText(result)
	return nil
}

func outputInspectJSON(result *workflows.InspectResult) error {
	out := inspectOutput{
		Path:      result.Path,
		Encrypted: result.Encrypted,
		Rounds:    result.Rounds,
		Type:      result.TypeName(),
	}
	if result.Decoded {
		out.Version = result.CertificateVersion()
		out.Suite = result.Suite
		out.EntityID = result.EntityID.String()
		out.PublicEncryptionKey = fmt.Sprintf("%x", result.PublicEncryptionKey)
		out.PublicSigningKey = fmt.Sprintf("%x", result.PublicSigningKey)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return Logger.ErrorfAndReturn("Failed to marshal result to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputInspectText(result *workflows.InspectResult) {
	fmt.Println(ui.Info.Sprint("Certificate") + " " + ui.Path.Sprint(result.Path))
	fmt.Println()

	if result.Encrypted {
		fmt.Print(ui.Detail("Encrypted", fmt.Sprintf("yes %s", ui.Muted.Sprintf("%d rounds", result.Rounds))))
	} else {
		fmt.Print(ui.Detail("Encrypted", "no"))
	}

	if !result.Decoded {
		fmt.Println()
		fmt.Println(ui.Info.Sprint("→") + " Run without " + ui.Flag.Sprint("--header-only") + " to decrypt and show its contents")
		return
	}

	fmt.Print(ui.Detail("Type", result.TypeName()))
	fmt.Print(ui.Detail("Version", result.CertificateVersion()))
	fmt.Print(ui.Detail("Suite", fmt.Sprintf("%s %s", result.Suite, ui.Muted.Sprintf("0x%04x", result.SuiteID))))
	fmt.Print(ui.Detail("Entity", ui.Highlight.Sprint(result.EntityID.String())))

	fmt.Println()
	fmt.Print(ui.Detail("Encryption key", ui.Key.Sprint(ui.Fingerprint(result.PublicEncryptionKey))))
	fmt.Printf("  %-20s %s\n", "", ui.Hex(result.PublicEncryptionKey))
	fmt.Print(ui.Detail("Signing key", ui.Key.Sprint(ui.Fingerprint(result.PublicSigningKey))))
	fmt.Printf("  %-20s %s\n", "", ui.Hex(result.PublicSigningKey))
}
