// Package certificate encodes and decodes certificate bodies, the plaintext
// carried inside an encrypted envelope.
//
// A body is a flat sequence of fields, each a big-endian uint16 type, a
// big-endian uint16 size and the value. A keypair certificate carries the
// version, certificate type, crypto suite, entity id and both X25519 and
// Ed25519 keypairs; a public certificate carries the same minus the private
// keys.
package certificate
