package certificate

import (
	"encoding/binary"
	"fmt"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	"github.com/hocktide/v-c-tool/internal/secret"
	"github.com/hocktide/v-c-tool/internal/suite"

	"github.com/google/uuid"
)

// Field types.
const (
	FieldVersion              uint16 = 0x0001
	FieldCryptoSuite          uint16 = 0x0004
	FieldType                 uint16 = 0x0005
	FieldEntityID             uint16 = 0x0020
	FieldPublicEncryptionKey  uint16 = 0x0040
	FieldPrivateEncryptionKey uint16 = 0x0041
	FieldPublicSigningKey     uint16 = 0x0042
	FieldPrivateSigningKey    uint16 = 0x0043
)

// Version is the only certificate version vctool reads or writes.
const Version uint32 = 0x00010000

// Certificate types.
var (
	// TypePrivateEntity marks a keypair certificate.
	TypePrivateEntity = uuid.MustParse("114d3c4e-9e5a-4f2a-9d14-6a7e1f0b2c3d")

	// TypePublicEntity marks a public certificate.
	TypePublicEntity = uuid.MustParse("8a6f0b7e-2d31-4c59-b3e8-0f4d7a9c1e62")
)

// Certificate is a decoded certificate body.
type Certificate struct {
	Version  uint32
	Type     uuid.UUID
	SuiteID  uint16
	EntityID uuid.UUID

	PublicEncryptionKey  []byte
	PrivateEncryptionKey []byte
	PublicSigningKey     []byte
	PrivateSigningKey    []byte
}

// NewKeypair creates a keypair certificate for a fresh entity, drawing the
// entity id and both keypairs from the suite.
func NewKeypair(s suite.Suite) (*Certificate, error) {
	entityID, err := uuid.NewRandomFromReader(s.Rand())
	if err != nil {
		return nil, fmt.Errorf("%w: entity id: %v", kerrors.ErrRandom, err)
	}

	encryptionPublic, encryptionPrivate, err := s.GenerateAgreementKeypair()
	if err != nil {
		return nil, err
	}

	signingPublic, signingPrivate, err := s.GenerateSigningKeypair()
	if err != nil {
		secret.Zero(encryptionPrivate)
		return nil, err
	}

	return &Certificate{
		Version:              Version,
		Type:                 TypePrivateEntity,
		SuiteID:              s.ID(),
		EntityID:             entityID,
		PublicEncryptionKey:  encryptionPublic,
		PrivateEncryptionKey: encryptionPrivate,
		PublicSigningKey:     signingPublic,
		PrivateSigningKey:    signingPrivate,
	}, nil
}

// IsKeypair reports whether c carries private keys.
func (c *Certificate) IsKeypair() bool {
	return c.Type == TypePrivateEntity
}

// Public returns the public certificate for c's entity.
func (c *Certificate) Public() *Certificate {
	return &Certificate{
		Version:             c.Version,
		Type:                TypePublicEntity,
		SuiteID:             c.SuiteID,
		EntityID:            c.EntityID,
		PublicEncryptionKey: append([]byte(nil), c.PublicEncryptionKey...),
		PublicSigningKey:    append([]byte(nil), c.PublicSigningKey...),
	}
}

// Wipe zeroes and drops the private keys.
func (c *Certificate) Wipe() {
	secret.Zero(c.PrivateEncryptionKey)
	secret.Zero(c.PrivateSigningKey)
	c.PrivateEncryptionKey = nil
	c.PrivateSigningKey = nil
}

// Encode serializes c. For a keypair certificate the result holds private
// keys; zero it once written.
func (c *Certificate) Encode() ([]byte, error) {
	size := 3*fieldHeaderSize + 4 + 16 + 2
	size += fieldHeaderSize + len(c.EntityID)
	for _, key := range [][]byte{c.PublicEncryptionKey, c.PrivateEncryptionKey, c.PublicSigningKey, c.PrivateSigningKey} {
		if key != nil {
			size += fieldHeaderSize + len(key)
		}
	}

	builder := NewBuilder(size)
	builder.AddUint32(FieldVersion, c.Version)
	builder.AddBuffer(FieldType, c.Type[:])
	builder.AddUint16(FieldCryptoSuite, c.SuiteID)
	builder.AddBuffer(FieldEntityID, c.EntityID[:])
	builder.AddBuffer(FieldPublicEncryptionKey, c.PublicEncryptionKey)
	if c.PrivateEncryptionKey != nil {
		builder.AddBuffer(FieldPrivateEncryptionKey, c.PrivateEncryptionKey)
	}
	builder.AddBuffer(FieldPublicSigningKey, c.PublicSigningKey)
	if c.PrivateSigningKey != nil {
		builder.AddBuffer(FieldPrivateSigningKey, c.PrivateSigningKey)
	}

	return builder.Bytes()
}

// Decode parses a certificate body produced for suite s. Every known field
// must have the size s expects and appear at most once; unknown fields are
// ignored. Key values are copied out of data.
func Decode(s suite.Suite, data []byte) (*Certificate, error) {
	fields, err := Parse(data)
	if err != nil {
		return nil, err
	}

	params := s.Params()
	sizes := map[uint16]int{
		FieldVersion:              4,
		FieldCryptoSuite:          2,
		FieldType:                 16,
		FieldEntityID:             16,
		FieldPublicEncryptionKey:  params.AgreementPublicKeySize,
		FieldPrivateEncryptionKey: params.AgreementPrivateKeySize,
		FieldPublicSigningKey:     params.SigningPublicKeySize,
		FieldPrivateSigningKey:    params.SigningPrivateKeySize,
	}

	values := make(map[uint16][]byte, len(sizes))
	for _, field := range fields {
		want, known := sizes[field.Type]
		if !known {
			continue
		}
		if _, seen := values[field.Type]; seen {
			return nil, fmt.Errorf("%w: duplicate field 0x%04x", kerrors.ErrMalformedField, field.Type)
		}
		if len(field.Value) != want {
			return nil, fmt.Errorf("%w: field 0x%04x is %d bytes, want %d", kerrors.ErrMalformedField, field.Type, len(field.Value), want)
		}
		values[field.Type] = field.Value
	}

	for _, required := range []uint16{FieldVersion, FieldType, FieldCryptoSuite, FieldEntityID, FieldPublicEncryptionKey, FieldPublicSigningKey} {
		if _, ok := values[required]; !ok {
			return nil, fmt.Errorf("%w: missing field 0x%04x", kerrors.ErrMalformedField, required)
		}
	}

	c := &Certificate{
		Version:             binary.BigEndian.Uint32(values[FieldVersion]),
		SuiteID:             binary.BigEndian.Uint16(values[FieldCryptoSuite]),
		PublicEncryptionKey: append([]byte(nil), values[FieldPublicEncryptionKey]...),
		PublicSigningKey:    append([]byte(nil), values[FieldPublicSigningKey]...),
	}
	copy(c.Type[:], values[FieldType])
	copy(c.EntityID[:], values[FieldEntityID])

	if c.Version != Version {
		return nil, fmt.Errorf("%w: unsupported certificate version 0x%08x", kerrors.ErrMalformedField, c.Version)
	}
	if c.SuiteID != s.ID() {
		return nil, fmt.Errorf("%w: certificate uses crypto suite 0x%04x, expected 0x%04x (%s)", kerrors.ErrMalformedField, c.SuiteID, s.ID(), s.Name())
	}

	_, hasPrivateEncryption := values[FieldPrivateEncryptionKey]
	_, hasPrivateSigning := values[FieldPrivateSigningKey]

	switch c.Type {
	case TypePrivateEntity:
		if !hasPrivateEncryption || !hasPrivateSigning {
			return nil, fmt.Errorf("%w: keypair certificate is missing a private key", kerrors.ErrMalformedField)
		}
		c.PrivateEncryptionKey = append([]byte(nil), values[FieldPrivateEncryptionKey]...)
		c.PrivateSigningKey = append([]byte(nil), values[FieldPrivateSigningKey]...)
	case TypePublicEntity:
		if hasPrivateEncryption || hasPrivateSigning {
			return nil, fmt.Errorf("%w: public certificate carries a private key", kerrors.ErrMalformedField)
		}
	default:
		return nil, fmt.Errorf("%w: unknown certificate type %s", kerrors.ErrMalformedField, c.Type)
	}

	return c, nil
}
