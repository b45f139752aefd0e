// Package utils provides the file and terminal helpers shared by the vctool
// workflows.
//
// # Filesystem Utilities
//
//   - CreateExclusive: writes a new 0600 file, refusing to clobber
//   - ReplaceFile: atomic replace through a temporary file and rename
//   - CheckKeyFilePermissions: rejects key files readable beyond their owner
//   - FileExists: existence check that surfaces permission errors
//
// # I/O Utilities
//
//   - ReadStdin: reads a piped key certificate from standard input
//
// # Terminal Utilities
//
// Passphrases are read with echo disabled and returned in secret buffers.
// While a passphrase is being read, the terminal state is held by a guard
// that restores it on return and on SIGINT, SIGTERM, SIGHUP or SIGQUIT,
// after which the signal is delivered again so the process exits as it
// normally would.
//
//   - ReadPassphrase: reads from stdin
//   - ReadPassphraseFromTTY: reads from /dev/tty when stdin is in use
package utils
