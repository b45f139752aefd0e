package certificate

import (
	"encoding/binary"
	"fmt"
	"math"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"
)

const fieldHeaderSize = 4

// Field is one typed value of a certificate body.
type Field struct {
	Type  uint16
	Value []byte
}

// Builder serializes fields as type | size | value, with type and size as
// big-endian uint16. The first error sticks and is reported by Bytes.
type Builder struct {
	data []byte
	err  error
}

// NewBuilder returns a builder with room for capacity bytes. Sizing it up
// front keeps private key material from being spread over discarded
// backing arrays as the body grows.
func NewBuilder(capacity int) *Builder {
	return &Builder{data: make([]byte, 0, capacity)}
}

// AddUint16 appends a two byte big-endian field.
func (b *Builder) AddUint16(fieldType, value uint16) {
	var encoded [2]byte
	binary.BigEndian.PutUint16(encoded[:], value)
	b.AddBuffer(fieldType, encoded[:])
}

// AddUint32 appends a four byte big-endian field.
func (b *Builder) AddUint32(fieldType uint16, value uint32) {
	var encoded [4]byte
	binary.BigEndian.PutUint32(encoded[:], value)
	b.AddBuffer(fieldType, encoded[:])
}

// AddBuffer appends a field holding value verbatim.
func (b *Builder) AddBuffer(fieldType uint16, value []byte) {
	if b.err != nil {
		return
	}
	if len(value) > math.MaxUint16 {
		b.err = fmt.Errorf("field 0x%04x is %d bytes, limit is %d", fieldType, len(value), math.MaxUint16)
		return
	}

	b.data = binary.BigEndian.AppendUint16(b.data, fieldType)
	b.data = binary.BigEndian.AppendUint16(b.data, uint16(len(value)))
	b.data = append(b.data, value...)
}

// Bytes returns the encoded body.
func (b *Builder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.data, nil
}

// Parse splits a certificate body into fields. Field values alias data.
func Parse(data []byte) ([]Field, error) {
	var fields []Field

	for offset := 0; offset < len(data); {
		if len(data)-offset < fieldHeaderSize {
			return nil, fmt.Errorf("%w: truncated field header at offset %d", kerrors.ErrMalformedField, offset)
		}

		fieldType := binary.BigEndian.Uint16(data[offset:])
		size := int(binary.BigEndian.Uint16(data[offset+2:]))
		offset += fieldHeaderSize

		if len(data)-offset < size {
			return nil, fmt.Errorf("%w: field 0x%04x claims %d bytes, %d remain", kerrors.ErrMalformedField, fieldType, size, len(data)-offset)
		}

		fields = append(fields, Field{
			Type:  fieldType,
			Value: data[offset : offset+size : offset+size],
		})
		offset += size
	}

	return fields, nil
}
