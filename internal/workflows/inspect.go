package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/hocktide/v-c-tool/internal/envelope"
	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/suite"

	"github.com/google/uuid"
)

// InspectOptions configures the inspect workflow.
type InspectOptions struct {
	Suite suite.Suite

	// Path is the certificate to inspect. Data, if set, is used instead.
	Path string
	Data []byte

	// HeaderOnly reports the envelope header of an encrypted certificate
	// without asking for a passphrase.
	HeaderOnly bool

	Passphrase PassphraseFunc
	MaxRounds  uint32
}

// InspectResult describes a certificate. It carries public values only.
type InspectResult struct {
	Path string

	Encrypted bool
	Rounds    uint32

	// Decoded is false when only the envelope header was read.
	Decoded bool

	Keypair             bool
	Version             uint32
	SuiteID             uint16
	Suite               string
	EntityID            uuid.UUID
	PublicEncryptionKey []byte
	PublicSigningKey    []byte
}

// Inspect reads a keypair or public certificate, decrypting it if needed,
// and reports its public contents.
func Inspect(ctx context.Context, opts InspectOptions) (*InspectResult, error) {
	data := opts.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("reading certificate: %w", err)
		}
		defer secret.Zero(data)
	}

	result := &InspectResult{Path: opts.Path}

	if opts.HeaderOnly && envelope.IsEncrypted(data) {
		rounds, err := envelope.ReadRounds(opts.Suite, data)
		if err != nil {
			return nil, err
		}
		result.Encrypted = true
		result.Rounds = rounds
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loaded, err := loadCertificate(opts.Suite, data, opts.Passphrase, opts.MaxRounds)
	if err != nil {
		return nil, err
	}
	defer loaded.cert.Wipe()

	cert := loaded.cert
	result.Encrypted = loaded.encrypted
	result.Rounds = loaded.rounds
	result.Decoded = true
	result.Keypair = cert.IsKeypair()
	result.Version = cert.Version
	result.SuiteID = cert.SuiteID
	result.Suite = opts.Suite.Name()
	result.EntityID = cert.EntityID
	result.PublicEncryptionKey = cert.PublicEncryptionKey
	result.PublicSigningKey = cert.PublicSigningKey

	return result, nil
}

// TypeName names the certificate type for display.
func (r *InspectResult) TypeName() string {
	switch {
	case !r.Decoded:
		return "unknown"
	case r.Keypair:
		return "keypair"
	default:
		return "public"
	}
}

// CertificateVersion formats the version as major.minor.
func (r *InspectResult) CertificateVersion() string {
	return fmt.Sprintf("%d.%d", r.Version>>16, r.Version&0xffff)
}
