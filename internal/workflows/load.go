package workflows

import (
	"errors"
	"fmt"

	"github.com/hocktide/v-c-tool/internal/certificate"
	"github.com/hocktide/v-c-tool/internal/envelope"
	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/suite"
)

// PassphraseFunc supplies a passphrase. Workflows only call it once they
// know a passphrase is needed, and Close the returned buffer when done.
type PassphraseFunc func() (*secret.Buffer, error)

// errPassphraseRequired is returned when a certificate is encrypted but the
// caller supplied no way to obtain a passphrase.
var errPassphraseRequired = errors.New("certificate is encrypted and no passphrase source was given")

// loaded is a certificate read from disk or stdin.
type loaded struct {
	cert      *certificate.Certificate
	encrypted bool
	rounds    uint32
}

// loadCertificate decodes data, decrypting it first if it carries the
// envelope magic. The passphrase is requested only for encrypted input.
func loadCertificate(s suite.Suite, data []byte, passphrase PassphraseFunc, maxRounds uint32) (*loaded, error) {
	if !envelope.IsEncrypted(data) {
		cert, err := certificate.Decode(s, data)
		if err != nil {
			return nil, err
		}
		return &loaded{cert: cert}, nil
	}

	if passphrase == nil {
		return nil, errPassphraseRequired
	}
	password, err := passphrase()
	if err != nil {
		return nil, err
	}
	defer password.Close()

	plaintext, err := envelope.Decrypt(s, data, password.Bytes(), envelope.WithMaxRounds(maxRounds))
	if err != nil {
		return nil, err
	}
	defer plaintext.Close()

	rounds, err := envelope.ReadRounds(s, data)
	if err != nil {
		return nil, err
	}

	cert, err := certificate.Decode(s, plaintext.Bytes())
	if err != nil {
		return nil, fmt.Errorf("decrypted certificate: %w", err)
	}

	return &loaded{cert: cert, encrypted: true, rounds: rounds}, nil
}

// sealCertificate encodes cert and, for a non-empty password, encrypts it.
// The returned bytes hold private keys when cert does and no password is
// given; the caller zeroes them once written.
func sealCertificate(s suite.Suite, cert *certificate.Certificate, password *secret.Buffer, rounds uint32) ([]byte, bool, error) {
	body, err := cert.Encode()
	if err != nil {
		return nil, false, fmt.Errorf("encoding certificate: %w", err)
	}

	if password == nil || password.Len() == 0 {
		return body, false, nil
	}
	defer secret.Zero(body)

	sealed, err := envelope.Encrypt(s, body, password.Bytes(), rounds)
	if err != nil {
		return nil, false, err
	}
	return sealed, true, nil
}

// readPassphrase calls fn if it is set and returns an empty buffer if not.
func readPassphrase(fn PassphraseFunc) (*secret.Buffer, error) {
	if fn == nil {
		return secret.New(0)
	}
	return fn()
}
