package suite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"fmt"
	"hash"
	"sort"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/curve25519"
)

// Suite names and certificate identifiers.
const (
	VeloV1   = "velo-v1"
	VeloV1ID = 0x0001

	XChaChaBlake3V1   = "xchacha-blake3-v1"
	XChaChaBlake3V1ID = 0x0002

	// Default is the suite used when neither a flag nor the config names one.
	Default = VeloV1
)

// velo-v1: PBKDF2-HMAC-SHA512, AES-256-CTR with a 64-bit IV, HMAC-SHA512.
var veloV1 = definition{
	id:   VeloV1ID,
	name: VeloV1,
	params: Params{
		KeySize:                 32,
		IVSize:                  8,
		MACSize:                 sha512.Size,
		AgreementPublicKeySize:  curve25519.PointSize,
		AgreementPrivateKeySize: curve25519.ScalarSize,
		SigningPublicKeySize:    ed25519.PublicKeySize,
		SigningPrivateKeySize:   ed25519.PrivateKeySize,
	},
	prf:          sha512.New,
	newKeystream: newAESCTR,
	newMAC: func(key []byte) (hash.Hash, error) {
		return hmac.New(sha512.New, key), nil
	},
}

// xchacha-blake3-v1: PBKDF2-HMAC-BLAKE3, XChaCha20, keyed BLAKE3.
var xchachaBlake3V1 = definition{
	id:   XChaChaBlake3V1ID,
	name: XChaChaBlake3V1,
	params: Params{
		KeySize:                 chacha20.KeySize,
		IVSize:                  chacha20.NonceSizeX,
		MACSize:                 32,
		AgreementPublicKeySize:  curve25519.PointSize,
		AgreementPrivateKeySize: curve25519.ScalarSize,
		SigningPublicKeySize:    ed25519.PublicKeySize,
		SigningPrivateKeySize:   ed25519.PrivateKeySize,
	},
	prf: func() hash.Hash {
		return blake3.New()
	},
	newKeystream: func(key, iv []byte) (cipher.Stream, error) {
		return chacha20.NewUnauthenticatedCipher(key, iv)
	},
	newMAC: func(key []byte) (hash.Hash, error) {
		return blake3.NewKeyed(key)
	},
}

var definitions = map[string]definition{
	veloV1.name:          veloV1,
	xchachaBlake3V1.name: xchachaBlake3V1,
}

// newAESCTR places the 8-byte IV in the high half of the counter block;
// the low half is the block counter starting at zero.
func newAESCTR(key, iv []byte) (cipher.Stream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	counter := make([]byte, aes.BlockSize)
	copy(counter, iv)
	return cipher.NewCTR(block, counter), nil
}

// Lookup returns the suite registered under name.
func Lookup(name string, opts ...Option) (Suite, error) {
	def, ok := definitions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", kerrors.ErrUnknownSuite, name, Names())
	}
	return newSuite(def, opts...), nil
}

// LookupID returns the suite whose certificate identifier is id.
func LookupID(id uint16, opts ...Option) (Suite, error) {
	for _, def := range definitions {
		if def.id == id {
			return newSuite(def, opts...), nil
		}
	}
	return nil, fmt.Errorf("%w: id 0x%04x", kerrors.ErrUnknownSuite, id)
}

// Names lists the registered suite names in sorted order.
func Names() []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
