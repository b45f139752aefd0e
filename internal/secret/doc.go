// Package secret provides a memory-safe buffer for passphrases, derived
// keys and decrypted certificates.
//
// On unix systems [Buffer] memory is allocated with mmap(MAP_ANONYMOUS)
// outside the Go heap, locked against swap where the memlock limit allows,
// and excluded from core dumps on Linux. On Close the memory is zeroed and
// unmapped. Elsewhere the buffer falls back to heap memory that is still
// zeroed on Close.
//
// Constructors:
//
//   - [New] allocates a zero-filled buffer of a given size (zero is allowed)
//   - [NewFromBytes] copies into protected memory and zeroes the source
//
// [Buffer.Equal] uses constant-time comparison. After Close, any access
// panics.
package secret
