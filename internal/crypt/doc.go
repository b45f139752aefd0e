// Package crypt turns a password into keyed cryptographic state.
//
// [DeriveKey] runs the suite KDF and returns the key in a secret buffer.
// [NewSession] derives a key once and uses it to key both the stream cipher
// and the MAC of a [Session]; the key buffer is always zeroed before
// NewSession returns, so callers only ever hold the initialized primitives.
package crypt
