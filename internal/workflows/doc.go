// Package workflows provides the high-level orchestration behind each vctool
// command.
//
// The cmd package stays thin: it parses flags, resolves the crypto suite,
// wires up passphrase prompts and formats results. Workflows do the rest:
// file existence and permission checks, certificate creation, envelope
// encryption and decryption, writing files and recording history.
//
// # Available Workflows
//
//   - Keygen: creates a keypair certificate, encrypted if a passphrase is given
//   - Pubkey: derives the public certificate from a keypair certificate
//   - Inspect: reports the public contents of any certificate
//   - Passwd: changes or removes the passphrase on a keypair certificate
//   - History: reads and filters the key history log
//
// # Passphrases
//
// Passphrases are supplied through a PassphraseFunc so that a prompt only
// appears when a file turns out to be encrypted. Workflows Close every
// buffer the func returns.
//
// # Error Handling
//
// Workflows return sentinel errors from the internal/errors package. Check
// them with errors.Is:
//
//	result, err := workflows.Pubkey(ctx, opts)
//	if errors.Is(err, kerrors.ErrVerification) {
//	    // wrong passphrase or a damaged file
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter
// and check it before the expensive key derivation step.
package workflows
