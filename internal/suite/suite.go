package suite

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"hash"
	"io"
	"math"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/pbkdf2"
)

// Params holds the fixed sizes a suite reports. Every envelope and
// certificate field width is derived from these rather than hardcoded.
type Params struct {
	KeySize                 int
	IVSize                  int
	MACSize                 int
	AgreementPublicKeySize  int
	AgreementPrivateKeySize int
	SigningPublicKeySize    int
	SigningPrivateKeySize   int
}

// Suite bundles the primitives vctool needs: a PRNG, a password KDF, a
// stream cipher, a MAC, key agreement and digital signatures.
type Suite interface {
	// ID is the identifier stored in the certificate crypto suite field.
	ID() uint16

	// Name is the identifier used on the command line and in config.
	Name() string

	Params() Params

	// Rand returns the suite's cryptographically secure PRNG.
	Rand() io.Reader

	// DeriveKey fills dst with a key derived from password and salt.
	// The same inputs always produce the same key.
	DeriveKey(dst, password, salt []byte, rounds uint32) error

	// NewStream creates a stream cipher keyed with key. The stream keeps
	// its own copy of key.
	NewStream(key []byte) (Stream, error)

	// NewMAC creates an incremental MAC keyed with key.
	NewMAC(key []byte) (hash.Hash, error)

	GenerateAgreementKeypair() (public, private []byte, err error)
	GenerateSigningKeypair() (public, private []byte, err error)
}

// Option customizes a suite returned by Lookup.
type Option func(*cryptoSuite)

// WithRand replaces the suite PRNG.
func WithRand(r io.Reader) Option {
	return func(s *cryptoSuite) {
		s.rand = r
	}
}

// definition describes the primitives of one suite.
type definition struct {
	id           uint16
	name         string
	params       Params
	prf          func() hash.Hash
	newKeystream keystreamFunc
	newMAC       func(key []byte) (hash.Hash, error)
}

type cryptoSuite struct {
	definition
	rand io.Reader
}

func newSuite(def definition, opts ...Option) *cryptoSuite {
	s := &cryptoSuite{
		definition: def,
		rand:       rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *cryptoSuite) ID() uint16      { return s.id }
func (s *cryptoSuite) Name() string    { return s.name }
func (s *cryptoSuite) Params() Params  { return s.params }
func (s *cryptoSuite) Rand() io.Reader { return s.rand }

func (s *cryptoSuite) DeriveKey(dst, password, salt []byte, rounds uint32) error {
	if rounds == 0 {
		return kerrors.ErrInvalidRounds
	}
	if uint64(rounds) > math.MaxInt {
		return fmt.Errorf("%d rounds exceeds the platform limit", rounds)
	}
	if len(dst) != s.params.KeySize {
		return fmt.Errorf("derived key buffer is %d bytes, want %d", len(dst), s.params.KeySize)
	}

	key := pbkdf2.Key(password, salt, int(rounds), s.params.KeySize, s.prf)
	copy(dst, key)
	for index := range key {
		key[index] = 0
	}

	return nil
}

func (s *cryptoSuite) NewStream(key []byte) (Stream, error) {
	if len(key) != s.params.KeySize {
		return nil, fmt.Errorf("stream key is %d bytes, want %d", len(key), s.params.KeySize)
	}
	return newStream(key, s.params.IVSize, s.newKeystream)
}

func (s *cryptoSuite) NewMAC(key []byte) (hash.Hash, error) {
	if len(key) != s.params.KeySize {
		return nil, fmt.Errorf("mac key is %d bytes, want %d", len(key), s.params.KeySize)
	}
	return s.newMAC(key)
}

// GenerateAgreementKeypair creates an X25519 keypair.
func (s *cryptoSuite) GenerateAgreementKeypair() ([]byte, []byte, error) {
	private := make([]byte, curve25519.ScalarSize)
	if _, err := io.ReadFull(s.rand, private); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", kerrors.ErrRandom, err)
	}

	public, err := curve25519.X25519(private, curve25519.Basepoint)
	if err != nil {
		for index := range private {
			private[index] = 0
		}
		return nil, nil, fmt.Errorf("computing x25519 public key: %w", err)
	}

	return public, private, nil
}

// GenerateSigningKeypair creates an Ed25519 keypair.
func (s *cryptoSuite) GenerateSigningKeypair() ([]byte, []byte, error) {
	public, private, err := ed25519.GenerateKey(s.rand)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", kerrors.ErrRandom, err)
	}
	return []byte(public), []byte(private), nil
}
