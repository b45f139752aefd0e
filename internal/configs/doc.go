// Package configs manages the vctool user configuration.
//
// The config file lives at $XDG_CONFIG_HOME/vctool/config.toml (or the
// platform equivalent from os.UserConfigDir) and holds default values for
// command-line flags:
//
//	[defaults]
//	suite = "velo-v1"
//	rounds = 50000
//	max_rounds = 16777216
//	output = "keypair.cert"
//
// Flags always override the file. Keys missing from the file take the
// built-in defaults. max_rounds bounds the round count vctool will accept
// from an encrypted certificate before spending any key derivation work on
// it.
package configs
