package suite

import (
	"crypto/cipher"
	"fmt"

	"github.com/hocktide/v-c-tool/internal/secret"
)

// Stream is a stream cipher whose IV travels in front of the ciphertext.
// StartEncryption writes the IV into the output; StartDecryption consumes
// it from the input. Both return the number of bytes written or consumed.
type Stream interface {
	StartEncryption(dst, iv []byte) (int, error)
	StartDecryption(src []byte) (int, error)
	Encrypt(dst, src []byte) (int, error)
	Decrypt(dst, src []byte) (int, error)

	// Close zeroes the key held by the stream.
	Close() error
}

type keystreamFunc func(key, iv []byte) (cipher.Stream, error)

type stream struct {
	key          *secret.Buffer
	ivSize       int
	newKeystream keystreamFunc
	keystream    cipher.Stream
}

func newStream(key []byte, ivSize int, newKeystream keystreamFunc) (*stream, error) {
	buffer, err := secret.New(len(key))
	if err != nil {
		return nil, err
	}
	copy(buffer.Bytes(), key)

	return &stream{
		key:          buffer,
		ivSize:       ivSize,
		newKeystream: newKeystream,
	}, nil
}

func (s *stream) start(iv []byte) error {
	keystream, err := s.newKeystream(s.key.Bytes(), iv)
	if err != nil {
		return fmt.Errorf("starting stream cipher: %w", err)
	}
	s.keystream = keystream
	return nil
}

func (s *stream) StartEncryption(dst, iv []byte) (int, error) {
	if len(iv) != s.ivSize {
		return 0, fmt.Errorf("iv is %d bytes, want %d", len(iv), s.ivSize)
	}
	if len(dst) < s.ivSize {
		return 0, fmt.Errorf("output has room for %d bytes, iv needs %d", len(dst), s.ivSize)
	}
	if err := s.start(iv); err != nil {
		return 0, err
	}
	return copy(dst, iv), nil
}

func (s *stream) StartDecryption(src []byte) (int, error) {
	if len(src) < s.ivSize {
		return 0, fmt.Errorf("input has %d bytes, iv needs %d", len(src), s.ivSize)
	}
	if err := s.start(src[:s.ivSize]); err != nil {
		return 0, err
	}
	return s.ivSize, nil
}

func (s *stream) Encrypt(dst, src []byte) (int, error) {
	return s.xor(dst, src)
}

func (s *stream) Decrypt(dst, src []byte) (int, error) {
	return s.xor(dst, src)
}

func (s *stream) xor(dst, src []byte) (int, error) {
	if s.keystream == nil {
		return 0, fmt.Errorf("stream cipher used before it was started")
	}
	if len(dst) < len(src) {
		return 0, fmt.Errorf("output has room for %d bytes, need %d", len(dst), len(src))
	}
	s.keystream.XORKeyStream(dst[:len(src)], src)
	return len(src), nil
}

func (s *stream) Close() error {
	s.keystream = nil
	return s.key.Close()
}
