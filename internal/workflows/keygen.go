package workflows

import (
	"context"
	"fmt"

	"github.com/hocktide/v-c-tool/internal/audit"
	"github.com/hocktide/v-c-tool/internal/certificate"
	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/suite"
	"github.com/hocktide/v-c-tool/internal/utils"

	"github.com/google/uuid"
)

// KeygenOptions configures the keygen workflow.
type KeygenOptions struct {
	Suite suite.Suite

	// OutputPath is where the keypair certificate is written. It must not exist.
	OutputPath string

	// Rounds is the key derivation work factor used when encrypting.
	Rounds uint32

	// Passphrase supplies the encryption passphrase. An empty passphrase,
	// or a nil func, stores the certificate unencrypted.
	Passphrase PassphraseFunc
}

// KeygenResult contains the outcome of a keygen operation.
type KeygenResult struct {
	OutputPath string
	EntityID   uuid.UUID
	Suite      string
	Encrypted  bool
	Rounds     uint32
}

// Keygen creates a new entity keypair certificate and writes it to a new
// owner-only file, encrypted under the passphrase if one is given.
//
// Returns ErrFileExists if the output already exists.
// Returns ErrInvalidRounds if Rounds is zero.
func Keygen(ctx context.Context, opts KeygenOptions) (*KeygenResult, error) {
	if opts.Rounds == 0 {
		return nil, kerrors.ErrInvalidRounds
	}

	exists, err := utils.FileExists(opts.OutputPath)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrFileExists, opts.OutputPath)
	}

	password, err := readPassphrase(opts.Passphrase)
	if err != nil {
		return nil, err
	}
	defer password.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cert, err := certificate.NewKeypair(opts.Suite)
	if err != nil {
		return nil, fmt.Errorf("creating keypair: %w", err)
	}
	defer cert.Wipe()

	data, encrypted, err := sealCertificate(opts.Suite, cert, password, opts.Rounds)
	if err != nil {
		return nil, err
	}
	defer secret.Zero(data)

	if err := utils.CreateExclusive(opts.OutputPath, data); err != nil {
		return nil, err
	}

	result := &KeygenResult{
		OutputPath: opts.OutputPath,
		EntityID:   cert.EntityID,
		Suite:      opts.Suite.Name(),
		Encrypted:  encrypted,
	}
	if encrypted {
		result.Rounds = opts.Rounds
	}

	audit.Log(audit.Entry{
		Operation: "keygen",
		EntityID:  result.EntityID.String(),
		Suite:     result.Suite,
		Path:      result.OutputPath,
		Encrypted: result.Encrypted,
		Rounds:    result.Rounds,
	})

	return result, nil
}
