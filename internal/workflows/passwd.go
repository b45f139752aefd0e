package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/hocktide/v-c-tool/internal/audit"
	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/suite"
	"github.com/hocktide/v-c-tool/internal/utils"
)

// PasswdOptions configures the passwd workflow.
type PasswdOptions struct {
	Suite suite.Suite

	// KeyPath is the keypair certificate to re-encrypt in place.
	KeyPath string

	// Passphrase unlocks the current file; it is only called if the file
	// is encrypted.
	Passphrase PassphraseFunc

	// NewPassphrase supplies the replacement. An empty result stores the
	// certificate unencrypted.
	NewPassphrase PassphraseFunc

	// Rounds is the work factor for the new encryption.
	Rounds    uint32
	MaxRounds uint32
}

// PasswdResult contains the outcome of a passwd operation.
type PasswdResult struct {
	KeyPath      string
	WasEncrypted bool
	Encrypted    bool
	Rounds       uint32
}

// Passwd changes the passphrase protecting a keypair certificate. The file
// is replaced atomically, so an interrupted run leaves the old file intact.
//
// Returns ErrMissingKeyFile if no key file is given.
// Returns ErrInsecurePermissions if the key file is accessible beyond its owner.
// Returns ErrVerification if the current passphrase is wrong.
// Returns ErrNotKeypair if the file holds a public certificate.
func Passwd(ctx context.Context, opts PasswdOptions) (*PasswdResult, error) {
	if opts.KeyPath == "" {
		return nil, kerrors.ErrMissingKeyFile
	}
	if opts.Rounds == 0 {
		return nil, kerrors.ErrInvalidRounds
	}

	if err := utils.CheckKeyFilePermissions(opts.KeyPath); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(opts.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	defer secret.Zero(data)

	key, err := loadCertificate(opts.Suite, data, opts.Passphrase, opts.MaxRounds)
	if err != nil {
		return nil, err
	}
	defer key.cert.Wipe()

	if !key.cert.IsKeypair() {
		return nil, kerrors.ErrNotKeypair
	}

	password, err := readPassphrase(opts.NewPassphrase)
	if err != nil {
		return nil, err
	}
	defer password.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sealed, encrypted, err := sealCertificate(opts.Suite, key.cert, password, opts.Rounds)
	if err != nil {
		return nil, err
	}
	defer secret.Zero(sealed)

	if err := utils.ReplaceFile(opts.KeyPath, sealed); err != nil {
		return nil, err
	}

	result := &PasswdResult{
		KeyPath:      opts.KeyPath,
		WasEncrypted: key.encrypted,
		Encrypted:    encrypted,
	}
	if encrypted {
		result.Rounds = opts.Rounds
	}

	audit.Log(audit.Entry{
		Operation: "passwd",
		EntityID:  key.cert.EntityID.String(),
		Suite:     opts.Suite.Name(),
		Path:      opts.KeyPath,
		Encrypted: result.Encrypted,
		Rounds:    result.Rounds,
	})

	return result, nil
}
