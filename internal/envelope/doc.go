// Package envelope implements the encrypted certificate container.
//
// An envelope is a single contiguous buffer:
//
//	"ENC" | rounds (uint32, big-endian) | salt | iv | ciphertext | mac
//
// The salt is as long as the suite key, the iv and mac widths come from the
// suite, and the mac covers every byte before it. A key is derived from the
// password, salt and rounds; the same key feeds the stream cipher and the
// MAC. Decrypt checks the size, the magic and the MAC, in that order, and
// only then runs the stream cipher over the ciphertext.
package envelope
