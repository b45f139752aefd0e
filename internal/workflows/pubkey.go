package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hocktide/v-c-tool/internal/audit"
	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/suite"
	"github.com/hocktide/v-c-tool/internal/utils"

	"github.com/google/uuid"
)

// PubkeySuffix is appended to the key file name to form the default output.
const PubkeySuffix = ".pub"

// PubkeyOptions configures the pubkey workflow.
type PubkeyOptions struct {
	Suite suite.Suite

	// KeyPath is the keypair certificate to read.
	KeyPath string

	// KeyData holds the keypair certificate when it was read from stdin.
	// If set, KeyPath is not read and OutputPath is required.
	KeyData []byte

	// OutputPath defaults to KeyPath with PubkeySuffix appended.
	OutputPath string

	// Passphrase is called only if the keypair certificate is encrypted.
	Passphrase PassphraseFunc

	// MaxRounds rejects encrypted certificates that claim more key
	// derivation rounds than this. Zero disables the limit.
	MaxRounds uint32
}

// PubkeyResult contains the outcome of a pubkey operation.
type PubkeyResult struct {
	OutputPath   string
	EntityID     uuid.UUID
	WasEncrypted bool
}

// Pubkey extracts the public certificate from a keypair certificate and
// writes it to a new owner-only file.
//
// Returns ErrMissingKeyFile if no key file is given.
// Returns ErrFileExists if the output already exists.
// Returns ErrInsecurePermissions if the key file is accessible beyond its owner.
// Returns ErrVerification if an encrypted key file cannot be decrypted.
// Returns ErrNotKeypair if the key file holds a public certificate.
func Pubkey(ctx context.Context, opts PubkeyOptions) (*PubkeyResult, error) {
	fromStdin := opts.KeyData != nil
	if !fromStdin && opts.KeyPath == "" {
		return nil, kerrors.ErrMissingKeyFile
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		if fromStdin {
			return nil, errors.New("an output file is required when the key is read from stdin")
		}
		outputPath = opts.KeyPath + PubkeySuffix
	}

	exists, err := utils.FileExists(outputPath)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrFileExists, outputPath)
	}

	data := opts.KeyData
	if !fromStdin {
		if err := utils.CheckKeyFilePermissions(opts.KeyPath); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(opts.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}
		defer secret.Zero(data)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := loadCertificate(opts.Suite, data, opts.Passphrase, opts.MaxRounds)
	if err != nil {
		return nil, err
	}
	defer key.cert.Wipe()

	if !key.cert.IsKeypair() {
		return nil, kerrors.ErrNotKeypair
	}

	public, err := key.cert.Public().Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding public certificate: %w", err)
	}

	if err := utils.CreateExclusive(outputPath, public); err != nil {
		return nil, err
	}

	result := &PubkeyResult{
		OutputPath:   outputPath,
		EntityID:     key.cert.EntityID,
		WasEncrypted: key.encrypted,
	}

	source := opts.KeyPath
	if fromStdin {
		source = "-"
	}
	audit.Log(audit.Entry{
		Operation: "pubkey",
		EntityID:  result.EntityID.String(),
		Suite:     opts.Suite.Name(),
		Path:      result.OutputPath,
		Source:    source,
	})

	return result, nil
}
