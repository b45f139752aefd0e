package ui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

const fingerprintSize = 16

// Detail renders one aligned "label: value" line of a report.
func Detail(label, value string) string {
	return fmt.Sprintf("  %-20s %s\n", label+":", value)
}

// Hex renders data as lowercase hex in groups of four bytes.
func Hex(data []byte) string {
	encoded := hex.EncodeToString(data)

	var b strings.Builder
	for index := 0; index < len(encoded); index += 8 {
		if index > 0 {
			b.WriteByte(' ')
		}
		end := min(index+8, len(encoded))
		b.WriteString(encoded[index:end])
	}
	return b.String()
}

// Fingerprint returns a short colon separated digest of a public key, for
// comparing keys by eye.
func Fingerprint(key []byte) string {
	digest := blake3.Sum256(key)

	parts := make([]string, fingerprintSize)
	for index := range parts {
		parts[index] = hex.EncodeToString(digest[index : index+1])
	}
	return strings.Join(parts, ":")
}
