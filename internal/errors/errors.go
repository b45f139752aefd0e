package errors

import "errors"

// Envelope errors are returned while parsing or authenticating an encrypted
// certificate. Callers presenting these to a user should collapse them into
// a single message so that no oracle is exposed.
var (
	// ErrTooSmall indicates the envelope is shorter than the minimum size for the suite.
	ErrTooSmall = errors.New("encrypted certificate is smaller than the minimum size")

	// ErrBadMagic indicates the envelope does not start with the encryption magic.
	ErrBadMagic = errors.New("encrypted certificate has an invalid header")

	// ErrVerification indicates the envelope failed authentication.
	ErrVerification = errors.New("certificate verification failed")
)

// Cryptographic errors indicate a failure in the underlying crypto suite.
var (
	// ErrKeyDerivation indicates the password could not be turned into a key.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrSuiteInit indicates the stream cipher or MAC could not be initialized.
	ErrSuiteInit = errors.New("crypto suite initialization failed")

	// ErrRandom indicates the suite PRNG could not supply random bytes.
	ErrRandom = errors.New("random number generation failed")

	// ErrAllocation indicates protected memory could not be allocated.
	ErrAllocation = errors.New("secure memory allocation failed")

	// ErrInvalidRounds indicates a key derivation round count of zero.
	ErrInvalidRounds = errors.New("key derivation rounds must be greater than zero")

	// ErrUnknownSuite indicates the requested crypto suite is not supported.
	ErrUnknownSuite = errors.New("unknown crypto suite")
)

// Certificate errors indicate a certificate body could not be understood.
var (
	// ErrMalformedField indicates a certificate field is truncated, duplicated,
	// missing, or has an unexpected size for its type.
	ErrMalformedField = errors.New("malformed certificate field")

	// ErrNotKeypair indicates a keypair certificate was expected but a
	// certificate of another type was found.
	ErrNotKeypair = errors.New("certificate is not a keypair certificate")
)

// File errors indicate issues with reading or writing certificate files.
var (
	// ErrFileExists indicates the output file already exists and won't be clobbered.
	ErrFileExists = errors.New("won't clobber existing file")

	// ErrMissingKeyFile indicates no key file was given or it could not be found.
	ErrMissingKeyFile = errors.New("missing key file")

	// ErrInsecurePermissions indicates the key file is accessible by more than its owner.
	ErrInsecurePermissions = errors.New("only user permissions allowed for key file")
)

// Passphrase errors indicate the passphrase could not be collected.
var (
	// ErrPassphraseMismatch indicates the passphrase and its verification differ.
	ErrPassphraseMismatch = errors.New("passphrases do not match")

	// ErrNotATerminal indicates a passphrase was requested but no terminal is attached.
	ErrNotATerminal = errors.New("cannot read passphrase: not a terminal")
)
