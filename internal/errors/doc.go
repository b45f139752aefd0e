// Package errors provides typed error values for vctool.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Envelope errors: ErrTooSmall, ErrBadMagic, ErrVerification
//   - Crypto errors: ErrKeyDerivation, ErrSuiteInit, ErrRandom, ErrAllocation
//   - Certificate errors: ErrMalformedField, ErrNotKeypair
//   - File errors: ErrFileExists, ErrMissingKeyFile, ErrInsecurePermissions
//   - Passphrase errors: ErrPassphraseMismatch, ErrNotATerminal
//
// # Usage
//
// Wrap errors with additional context:
//
//	return nil, fmt.Errorf("%w: field 0x%04x is %d bytes", errors.ErrMalformedField, tag, size)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrVerification) {
//	    // Show the generic verification failure message
//	}
//
// The envelope errors deliberately carry no detail about which bytes failed
// to authenticate. The CLI collapses all of them into one message.
package errors
