package cmd

import (
	"context"
	"fmt"

	"github.com/hocktide/v-c-tool/internal/ui"
	"github.com/hocktide/v-c-tool/internal/workflows"

	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Create a new entity keypair certificate",
	Long: `Creates a new entity with fresh encryption and signing keypairs and writes
its keypair certificate to a new file readable only by you.

You are asked for a passphrase. If you enter one, the certificate is
encrypted under it; leave it empty to store the certificate unencrypted.
An existing file is never overwritten.

Examples:
  # Create keypair.cert in the current directory
  vctool keygen

  # Choose the file and make the passphrase harder to guess
  vctool keygen -o alice.cert -R 200000`,
	Args: cobra.NoArgs,
	RunE: runKeygen,
}

func runKeygen(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting keygen command")

	resolved, err := resolveSettings(cmd)
	if err != nil {
		return fail(nil, err)
	}

	p := newProgress("Encrypting keypair certificate...")
	opts := workflows.KeygenOptions{
		Suite:      resolved.suite,
		OutputPath: resolved.output,
		Rounds:     resolved.rounds,
		Passphrase: p.wrap(promptNewPassphrase("Enter passphrase: ", "Verify passphrase: ")),
	}

	result, err := workflows.Keygen(context.Background(), opts)
	if err != nil {
		return fail(p, err)
	}

	Logger.Infof("Keypair certificate written to %s", result.OutputPath)

	msg := ui.Success.Sprint("✓") + " Created keypair certificate " + ui.Path.Sprint(result.OutputPath) + "\n" +
		ui.Detail("Entity", ui.Highlight.Sprint(result.EntityID.String())) +
		ui.Detail("Suite", result.Suite)
	if result.Encrypted {
		msg += ui.Detail("Encrypted", fmt.Sprintf("yes %s", ui.Muted.Sprintf("%d rounds", result.Rounds)))
	} else {
		msg += ui.Detail("Encrypted", ui.Warning.Sprint("no"))
	}
	p.finish(msg)
	return nil
}
