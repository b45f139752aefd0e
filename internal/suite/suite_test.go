package suite

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"testing"

	kerrors "github.com/hocktide/v-c-tool/internal/errors"

	"golang.org/x/crypto/curve25519"
)

func allSuites(t *testing.T) []Suite {
	t.Helper()
	var suites []Suite
	for _, name := range Names() {
		s, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) error: %v", name, err)
		}
		suites = append(suites, s)
	}
	return suites
}

func TestLookup_Known(t *testing.T) {
	tests := []struct {
		name   string
		id     uint16
		ivSize int
		mac    int
	}{
		{VeloV1, VeloV1ID, 8, 64},
		{XChaChaBlake3V1, XChaChaBlake3V1ID, 24, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup() error: %v", err)
			}
			if s.ID() != tt.id {
				t.Errorf("ID() = 0x%04x, want 0x%04x", s.ID(), tt.id)
			}
			params := s.Params()
			if params.KeySize != 32 {
				t.Errorf("KeySize = %d, want 32", params.KeySize)
			}
			if params.IVSize != tt.ivSize {
				t.Errorf("IVSize = %d, want %d", params.IVSize, tt.ivSize)
			}
			if params.MACSize != tt.mac {
				t.Errorf("MACSize = %d, want %d", params.MACSize, tt.mac)
			}

			byID, err := LookupID(tt.id)
			if err != nil {
				t.Fatalf("LookupID() error: %v", err)
			}
			if byID.Name() != tt.name {
				t.Errorf("LookupID(0x%04x).Name() = %q, want %q", tt.id, byID.Name(), tt.name)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, err := Lookup("rot13"); !errors.Is(err, kerrors.ErrUnknownSuite) {
		t.Errorf("Lookup(rot13) error = %v, want ErrUnknownSuite", err)
	}
	if _, err := LookupID(0xffff); !errors.Is(err, kerrors.ErrUnknownSuite) {
		t.Errorf("LookupID(0xffff) error = %v, want ErrUnknownSuite", err)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	for _, s := range allSuites(t) {
		t.Run(s.Name(), func(t *testing.T) {
			salt := bytes.Repeat([]byte{0x5a}, s.Params().KeySize)
			first := make([]byte, s.Params().KeySize)
			second := make([]byte, s.Params().KeySize)

			if err := s.DeriveKey(first, []byte("password"), salt, 10); err != nil {
				t.Fatalf("DeriveKey() error: %v", err)
			}
			if err := s.DeriveKey(second, []byte("password"), salt, 10); err != nil {
				t.Fatalf("DeriveKey() error: %v", err)
			}
			if !bytes.Equal(first, second) {
				t.Error("DeriveKey() is not deterministic")
			}

			other := make([]byte, s.Params().KeySize)
			if err := s.DeriveKey(other, []byte("password"), salt, 11); err != nil {
				t.Fatalf("DeriveKey() error: %v", err)
			}
			if bytes.Equal(first, other) {
				t.Error("different round counts derived the same key")
			}
		})
	}
}

func TestDeriveKey_Rejects(t *testing.T) {
	s, err := Lookup(VeloV1)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	salt := make([]byte, 32)

	if err := s.DeriveKey(make([]byte, 32), []byte("pw"), salt, 0); !errors.Is(err, kerrors.ErrInvalidRounds) {
		t.Errorf("DeriveKey(rounds=0) error = %v, want ErrInvalidRounds", err)
	}
	if err := s.DeriveKey(make([]byte, 16), []byte("pw"), salt, 1); err == nil {
		t.Error("DeriveKey() with a short key buffer should fail")
	}
}

func TestStream_RoundTrip(t *testing.T) {
	for _, s := range allSuites(t) {
		t.Run(s.Name(), func(t *testing.T) {
			params := s.Params()
			key := bytes.Repeat([]byte{0x01}, params.KeySize)
			iv := bytes.Repeat([]byte{0x02}, params.IVSize)
			plaintext := []byte("a certificate body long enough to cross a block boundary")

			encryptor, err := s.NewStream(key)
			if err != nil {
				t.Fatalf("NewStream() error: %v", err)
			}
			defer encryptor.Close()

			out := make([]byte, params.IVSize+len(plaintext))
			offset, err := encryptor.StartEncryption(out, iv)
			if err != nil {
				t.Fatalf("StartEncryption() error: %v", err)
			}
			if offset != params.IVSize {
				t.Fatalf("StartEncryption() offset = %d, want %d", offset, params.IVSize)
			}
			if !bytes.Equal(out[:offset], iv) {
				t.Error("StartEncryption() did not write the iv")
			}
			if _, err := encryptor.Encrypt(out[offset:], plaintext); err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			if bytes.Equal(out[offset:], plaintext) {
				t.Error("ciphertext equals plaintext")
			}

			decryptor, err := s.NewStream(key)
			if err != nil {
				t.Fatalf("NewStream() error: %v", err)
			}
			defer decryptor.Close()

			consumed, err := decryptor.StartDecryption(out)
			if err != nil {
				t.Fatalf("StartDecryption() error: %v", err)
			}
			recovered := make([]byte, len(plaintext))
			if _, err := decryptor.Decrypt(recovered, out[consumed:]); err != nil {
				t.Fatalf("Decrypt() error: %v", err)
			}
			if !bytes.Equal(recovered, plaintext) {
				t.Errorf("Decrypt() = %q, want %q", recovered, plaintext)
			}
		})
	}
}

func TestStream_Misuse(t *testing.T) {
	s, err := Lookup(XChaChaBlake3V1)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	stream, err := s.NewStream(make([]byte, 32))
	if err != nil {
		t.Fatalf("NewStream() error: %v", err)
	}
	defer stream.Close()

	if _, err := stream.Encrypt(make([]byte, 4), []byte("data")); err == nil {
		t.Error("Encrypt() before StartEncryption() should fail")
	}
	if _, err := stream.StartEncryption(make([]byte, 64), make([]byte, 3)); err == nil {
		t.Error("StartEncryption() with a short iv should fail")
	}
	if _, err := stream.StartDecryption(make([]byte, 3)); err == nil {
		t.Error("StartDecryption() with a short input should fail")
	}
	if _, err := s.NewStream(make([]byte, 16)); err == nil {
		t.Error("NewStream() with a short key should fail")
	}
}

func TestMAC_KeyedAndSized(t *testing.T) {
	for _, s := range allSuites(t) {
		t.Run(s.Name(), func(t *testing.T) {
			keyA := bytes.Repeat([]byte{0xaa}, s.Params().KeySize)
			keyB := bytes.Repeat([]byte{0xbb}, s.Params().KeySize)

			macA, err := s.NewMAC(keyA)
			if err != nil {
				t.Fatalf("NewMAC() error: %v", err)
			}
			macB, err := s.NewMAC(keyB)
			if err != nil {
				t.Fatalf("NewMAC() error: %v", err)
			}
			macA.Write([]byte("message"))
			macB.Write([]byte("message"))
			tagA := macA.Sum(nil)
			tagB := macB.Sum(nil)

			if len(tagA) != s.Params().MACSize {
				t.Errorf("tag is %d bytes, want %d", len(tagA), s.Params().MACSize)
			}
			if bytes.Equal(tagA, tagB) {
				t.Error("different keys produced the same tag")
			}
		})
	}
}

func TestGenerateKeypairs(t *testing.T) {
	for _, s := range allSuites(t) {
		t.Run(s.Name(), func(t *testing.T) {
			params := s.Params()

			agreePub, agreePriv, err := s.GenerateAgreementKeypair()
			if err != nil {
				t.Fatalf("GenerateAgreementKeypair() error: %v", err)
			}
			if len(agreePub) != params.AgreementPublicKeySize || len(agreePriv) != params.AgreementPrivateKeySize {
				t.Errorf("agreement key sizes = %d/%d", len(agreePub), len(agreePriv))
			}
			derived, err := curve25519.X25519(agreePriv, curve25519.Basepoint)
			if err != nil {
				t.Fatalf("X25519() error: %v", err)
			}
			if !bytes.Equal(derived, agreePub) {
				t.Error("agreement public key does not match private key")
			}

			signPub, signPriv, err := s.GenerateSigningKeypair()
			if err != nil {
				t.Fatalf("GenerateSigningKeypair() error: %v", err)
			}
			if len(signPub) != params.SigningPublicKeySize || len(signPriv) != params.SigningPrivateKeySize {
				t.Errorf("signing key sizes = %d/%d", len(signPub), len(signPriv))
			}
			message := []byte("signed")
			signature := ed25519.Sign(ed25519.PrivateKey(signPriv), message)
			if !ed25519.Verify(ed25519.PublicKey(signPub), message, signature) {
				t.Error("signing keypair does not verify")
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestWithRand_Failure(t *testing.T) {
	s, err := Lookup(VeloV1, WithRand(failingReader{}))
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if _, _, err := s.GenerateAgreementKeypair(); !errors.Is(err, kerrors.ErrRandom) {
		t.Errorf("GenerateAgreementKeypair() error = %v, want ErrRandom", err)
	}
	if _, _, err := s.GenerateSigningKeypair(); !errors.Is(err, kerrors.ErrRandom) {
		t.Errorf("GenerateSigningKeypair() error = %v, want ErrRandom", err)
	}
}
