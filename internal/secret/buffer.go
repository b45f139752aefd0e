package secret

import (
	"crypto/subtle"
	"fmt"
	"sync"
)

// Buffer holds sensitive data (passphrases, derived keys, decrypted
// certificates) in memory allocated outside the Go heap. The contents are
// zeroed on Close.
//
// A Buffer must not be copied after creation. After Close, any access to the
// buffer's contents panics. Close is idempotent.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	length int
	closed bool
}

// New allocates a zero-filled buffer of the given size. A size of zero is
// valid and yields an empty buffer; an empty passphrase is a legitimate input.
func New(size int) (*Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("secret: buffer size must not be negative, got %d", size)
	}
	if size == 0 {
		return &Buffer{}, nil
	}

	data, err := allocate(size)
	if err != nil {
		return nil, err
	}

	return &Buffer{
		data:   data,
		length: size,
	}, nil
}

// NewFromBytes copies source into a new buffer and then zeroes source in
// place, so the caller's slice no longer holds the secret.
func NewFromBytes(source []byte) (*Buffer, error) {
	buffer, err := New(len(source))
	if err != nil {
		Zero(source)
		return nil, err
	}

	copy(buffer.data, source)
	Zero(source)

	return buffer, nil
}

// Bytes returns the secret data. The returned slice points directly into the
// protected region; do not hold it beyond the lifetime of the Buffer.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}

	return b.data[:b.length]
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.length
}

// Equal reports whether the buffer holds exactly other, in constant time
// with respect to the contents.
func (b *Buffer) Equal(other []byte) bool {
	data := b.Bytes()
	if len(data) != len(other) {
		return false
	}
	return subtle.ConstantTimeCompare(data, other) == 1
}

// Close zeroes the contents and releases the memory.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.data == nil {
		return nil
	}

	Zero(b.data)
	err := release(b.data)
	b.data = nil
	return err
}

// Zero overwrites data with zeros. Use it on heap copies of secrets that
// could not be kept in a Buffer.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
