// Package suite provides the crypto suites vctool encrypts and signs with.
//
// A [Suite] is a capability bundle: a PRNG, a password key derivation
// function, a stream cipher, a MAC, X25519 key agreement and Ed25519
// signatures, together with the fixed sizes of each primitive. Envelope and
// certificate code only ever reaches cryptography through this interface,
// so the file formats are parametric in the suite.
//
// # Suites
//
//   - velo-v1 (default): PBKDF2-HMAC-SHA512, AES-256-CTR, HMAC-SHA512
//   - xchacha-blake3-v1: PBKDF2-HMAC-BLAKE3, XChaCha20, keyed BLAKE3
//
// Both use X25519 for key agreement and Ed25519 for signing.
//
// The encrypted envelope does not record which suite produced it; the
// suite is selected with --suite or the config file on both sides.
package suite
