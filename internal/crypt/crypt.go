package crypt

import (
	"fmt"
	"hash"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/suite"
)

// DeriveKey derives a symmetric key of the suite's key size from a password,
// salt and round count. The caller must Close the returned buffer.
func DeriveKey(s suite.Suite, password, salt []byte, rounds uint32) (*secret.Buffer, error) {
	if len(salt) != s.Params().KeySize {
		return nil, fmt.Errorf("%w: salt is %d bytes, want %d", kerrors.ErrKeyDerivation, len(salt), s.Params().KeySize)
	}

	key, err := secret.New(s.Params().KeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrAllocation, err)
	}

	if err := s.DeriveKey(key.Bytes(), password, salt, rounds); err != nil {
		key.Close()
		return nil, fmt.Errorf("%w: %v", kerrors.ErrKeyDerivation, err)
	}

	return key, nil
}

// Session is a stream cipher and MAC keyed from the same password-derived
// key. The key itself never leaves NewSession.
type Session struct {
	Stream suite.Stream
	MAC    hash.Hash
}

// NewSession derives a key from password, salt and rounds, then keys a
// stream cipher and a MAC with it. The derived key is zeroed before
// NewSession returns, on success and on failure.
func NewSession(s suite.Suite, password, salt []byte, rounds uint32) (*Session, error) {
	key, err := DeriveKey(s, password, salt, rounds)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	mac, err := s.NewMAC(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: mac: %v", kerrors.ErrSuiteInit, err)
	}

	stream, err := s.NewStream(key.Bytes())
	if err != nil {
		mac.Reset()
		return nil, fmt.Errorf("%w: stream cipher: %v", kerrors.ErrSuiteInit, err)
	}

	return &Session{
		Stream: stream,
		MAC:    mac,
	}, nil
}

// Close releases the stream cipher key and resets the MAC state.
func (s *Session) Close() error {
	if s.MAC != nil {
		s.MAC.Reset()
		s.MAC = nil
	}
	if s.Stream != nil {
		err := s.Stream.Close()
		s.Stream = nil
		return err
	}
	return nil
}
