package cmd

import (
	"context"
	"errors"

	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/ui"
	"github.com/hocktide/v-c-tool/internal/utils"
	"github.com/hocktide/v-c-tool/internal/workflows"

	"github.com/spf13/cobra"
)

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Extract the public certificate from a keypair certificate",
	Long: `Reads a keypair certificate and writes a public certificate holding the
entity id and its public keys. The public certificate is safe to share.

The keypair certificate must be readable only by you. If it is encrypted,
you are asked for its passphrase. Use --key - to read it from stdin; the
passphrase is then read from the terminal and --output is required.

Examples:
  # Write alice.cert.pub
  vctool pubkey -k alice.cert

  # Choose the output file
  vctool pubkey -k alice.cert -o alice-public.cert

  # Read the keypair certificate from stdin
  cat alice.cert | vctool pubkey -k - -o alice.pub`,
	Args: cobra.NoArgs,
	RunE: runPubkey,
}

func runPubkey(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting pubkey command")

	resolved, err := resolveSettings(cmd)
	if err != nil {
		return fail(nil, err)
	}

	fromStdin := keyFlag == "-"
	opts := workflows.PubkeyOptions{
		Suite:     resolved.suite,
		KeyPath:   keyFlag,
		MaxRounds: resolved.maxRounds,
	}
	if cmd.Flags().Changed("output") {
		opts.OutputPath = outputFlag
	}

	if fromStdin {
		if opts.OutputPath == "" {
			return fail(nil, errors.New("--output is required when the key is read from stdin"))
		}
		Logger.Debugf("Reading keypair certificate from stdin")
		data, err := utils.ReadStdin()
		if err != nil {
			return fail(nil, err)
		}
		defer secret.Zero(data)
		opts.KeyPath = ""
		opts.KeyData = data
	}

	p := newProgress("Decrypting keypair certificate...")
	opts.Passphrase = p.wrap(promptPassphrase("Enter passphrase: ", fromStdin))

	result, err := workflows.Pubkey(context.Background(), opts)
	if err != nil {
		return fail(p, err)
	}

	Logger.Infof("Public certificate written to %s", result.OutputPath)

	p.finish(ui.Success.Sprint("✓") + " Wrote public certificate " + ui.Path.Sprint(result.OutputPath) + "\n" +
		ui.Detail("Entity", ui.Highlight.Sprint(result.EntityID.String())))
	return nil
}
