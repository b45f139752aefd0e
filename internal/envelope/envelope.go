package envelope

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hocktide/v-c-tool/internal/crypt"
	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/suite"
)

// Magic marks an encrypted certificate.
const Magic = "ENC"

const (
	roundsSize = 4
	headerSize = len(Magic) + roundsSize
)

// MinimumSize returns the size of an envelope holding an empty plaintext.
func MinimumSize(s suite.Suite) int {
	params := s.Params()
	return headerSize + params.KeySize + params.IVSize + params.MACSize
}

// IsEncrypted reports whether data starts with the envelope magic and has
// anything after it.
func IsEncrypted(data []byte) bool {
	if len(data) <= len(Magic) {
		return false
	}
	return subtle.ConstantTimeCompare(data[:len(Magic)], []byte(Magic)) == 1
}

// ReadRounds returns the key derivation round count stored in an envelope.
// The value is unauthenticated until Decrypt succeeds.
func ReadRounds(s suite.Suite, data []byte) (uint32, error) {
	if len(data) < MinimumSize(s) {
		return 0, fmt.Errorf("%w: %d bytes, need at least %d", kerrors.ErrTooSmall, len(data), MinimumSize(s))
	}
	if !IsEncrypted(data) {
		return 0, badMagic()
	}
	return binary.BigEndian.Uint32(data[len(Magic):headerSize]), nil
}

// Encrypt wraps plaintext in an envelope keyed from password. The salt and
// IV are drawn fresh from the suite PRNG on every call. On failure no part
// of the envelope is returned.
func Encrypt(s suite.Suite, plaintext, password []byte, rounds uint32) ([]byte, error) {
	if rounds == 0 {
		return nil, kerrors.ErrInvalidRounds
	}

	params := s.Params()

	salt := make([]byte, params.KeySize)
	defer secret.Zero(salt)
	if _, err := io.ReadFull(s.Rand(), salt); err != nil {
		return nil, fmt.Errorf("%w: salt: %v", kerrors.ErrRandom, err)
	}

	iv := make([]byte, params.IVSize)
	defer secret.Zero(iv)
	if _, err := io.ReadFull(s.Rand(), iv); err != nil {
		return nil, fmt.Errorf("%w: iv: %v", kerrors.ErrRandom, err)
	}

	session, err := crypt.NewSession(s, password, salt, rounds)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	out := make([]byte, headerSize+len(salt)+len(iv)+len(plaintext)+params.MACSize)

	offset := copy(out, Magic)
	session.MAC.Write(out[:offset])

	binary.BigEndian.PutUint32(out[offset:], rounds)
	session.MAC.Write(out[offset : offset+roundsSize])
	offset += roundsSize

	copied := copy(out[offset:], salt)
	session.MAC.Write(out[offset : offset+copied])
	offset += copied

	body := offset
	written, err := session.Stream.StartEncryption(out[offset:], iv)
	if err != nil {
		secret.Zero(out)
		return nil, fmt.Errorf("%w: %v", kerrors.ErrSuiteInit, err)
	}
	offset += written

	written, err = session.Stream.Encrypt(out[offset:], plaintext)
	if err != nil {
		secret.Zero(out)
		return nil, fmt.Errorf("%w: %v", kerrors.ErrSuiteInit, err)
	}
	offset += written

	session.MAC.Write(out[body:offset])
	if copied := copy(out[offset:], session.MAC.Sum(nil)); offset+copied != len(out) {
		secret.Zero(out)
		return nil, fmt.Errorf("%w: mac produced %d bytes, want %d", kerrors.ErrSuiteInit, copied, params.MACSize)
	}

	return out, nil
}

// DecryptOption customizes Decrypt.
type DecryptOption func(*decryptConfig)

type decryptConfig struct {
	maxRounds uint32
}

// WithMaxRounds rejects envelopes whose embedded round count exceeds limit
// before any key derivation work is done. A limit of 0 disables the check.
func WithMaxRounds(limit uint32) DecryptOption {
	return func(c *decryptConfig) {
		c.maxRounds = limit
	}
}

// Decrypt authenticates data and returns its plaintext in a fresh buffer
// the caller must Close. The MAC is verified before any ciphertext is
// decrypted, and data is never modified.
func Decrypt(s suite.Suite, data, password []byte, opts ...DecryptOption) (*secret.Buffer, error) {
	var config decryptConfig
	for _, opt := range opts {
		opt(&config)
	}

	params := s.Params()
	minimum := MinimumSize(s)

	if len(data) < minimum {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", kerrors.ErrTooSmall, len(data), minimum)
	}
	if subtle.ConstantTimeCompare(data[:len(Magic)], []byte(Magic)) != 1 {
		return nil, badMagic()
	}

	rounds := binary.BigEndian.Uint32(data[len(Magic):headerSize])
	if rounds == 0 {
		return nil, fmt.Errorf("%w: zero key derivation rounds", kerrors.ErrVerification)
	}
	if config.maxRounds > 0 && rounds > config.maxRounds {
		return nil, fmt.Errorf("%w: %d key derivation rounds exceeds the limit of %d", kerrors.ErrVerification, rounds, config.maxRounds)
	}

	bodyStart := headerSize + params.KeySize
	macStart := len(data) - params.MACSize
	salt := data[headerSize:bodyStart]

	session, err := crypt.NewSession(s, password, salt, rounds)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	session.MAC.Write(data[:macStart])
	if subtle.ConstantTimeCompare(session.MAC.Sum(nil), data[macStart:]) != 1 {
		return nil, kerrors.ErrVerification
	}

	consumed, err := session.Stream.StartDecryption(data[bodyStart:macStart])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrSuiteInit, err)
	}

	plaintext, err := secret.New(len(data) - minimum)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrAllocation, err)
	}

	if _, err := session.Stream.Decrypt(plaintext.Bytes(), data[bodyStart+consumed:macStart]); err != nil {
		plaintext.Close()
		return nil, fmt.Errorf("%w: %v", kerrors.ErrSuiteInit, err)
	}

	return plaintext, nil
}

// badMagic is both a format error and a verification failure, so callers
// that collapse every decrypt failure into one message can still match it.
func badMagic() error {
	return fmt.Errorf("%w: %w", kerrors.ErrVerification, kerrors.ErrBadMagic)
}
