package cmd

import (
	"context"
	"fmt"

	"github.com/hocktide/v-c-tool/internal/ui"
	"github.com/hocktide/v-c-tool/internal/workflows"

	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the passphrase of a keypair certificate",
	Long: `Re-encrypts a keypair certificate under a new passphrase. Leave the new
passphrase empty to store the certificate unencrypted.

The file is replaced atomically: if anything fails, the old file is left as
it was.

Examples:
  vctool passwd -k alice.cert
  vctool passwd -k alice.cert -R 500000`,
	Args: cobra.NoArgs,
	RunE: runPasswd,
}

func runPasswd(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting passwd command")

	resolved, err := resolveSettings(cmd)
	if err != nil {
		return fail(nil, err)
	}
	if keyFlag == "-" {
		return fail(nil, fmt.Errorf("passwd rewrites the key file in place and cannot read it from stdin"))
	}

	p := newProgress("Re-encrypting keypair certificate...")
	opts := workflows.PasswdOptions{
		Suite:         resolved.suite,
		KeyPath:       keyFlag,
		Passphrase:    p.wrap(promptPassphrase("Enter current passphrase: ", false)),
		NewPassphrase: p.wrap(promptNewPassphrase("Enter new passphrase: ", "Verify new passphrase: ")),
		Rounds:        resolved.rounds,
		MaxRounds:     resolved.maxRounds,
	}

	result, err := workflows.Passwd(context.Background(), opts)
	if err != nil {
		return fail(p, err)
	}

	var msg string
	switch {
	case result.Encrypted:
		msg = ui.Success.Sprint("✓") + " Changed passphrase for " + ui.Path.Sprint(result.KeyPath) + "\n" +
			ui.Detail("Encrypted", fmt.Sprintf("yes %s", ui.Muted.Sprintf("%d rounds", result.Rounds)))
	case result.WasEncrypted:
		msg = ui.Success.Sprint("✓") + " Removed passphrase from " + ui.Path.Sprint(result.KeyPath) + "\n" +
			ui.Warning.Sprint("⚠") + " The keypair certificate is now stored unencrypted"
	default:
		msg = ui.Success.Sprint("✓") + " Rewrote " + ui.Path.Sprint(result.KeyPath) + " unencrypted"
	}
	p.finish(msg)
	return nil
}
