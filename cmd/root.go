package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/hocktide/v-c-tool/internal/configs"
	kerrors "github.com/hocktide/v-c-tool/internal/errors"
	logger "github.com/hocktide/v-c-tool/internal/logging"
	"github.com/hocktide/v-c-tool/internal/suite"
	"github.com/hocktide/v-c-tool/internal/ui"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose    bool
	debug      bool
	outputFlag string
	keyFlag    string
	roundsFlag uint32
	suiteFlag  string
	Logger     logger.Logger

	// RootCmd is the vctool command.
	RootCmd = &cobra.Command{
		Use:   "vctool",
		Short: "vctool - create and manage entity certificates",
		Long: `vctool creates entity keypair certificates and manages the passphrases
that protect them.

A keypair certificate holds an entity id together with its encryption and
signing keys. It can be stored encrypted under a passphrase, and its public
half can be extracted into a public certificate to share with others.

Examples:
  # Create an encrypted keypair certificate
  vctool keygen -o alice.cert

  # Extract the public certificate to alice.cert.pub
  vctool pubkey -k alice.cert

  # Show what a certificate contains
  vctool inspect alice.cert.pub`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			banner := figure.NewFigure("vctool", "", true)
			fmt.Print(ui.Info.Sprint(banner.String()))
			fmt.Println()
			fmt.Println("Run " + ui.Code.Sprint("vctool --help") + " to see available commands.")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
		},
	}
)

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&outputFlag, "output", "o", "", "output file")
	flags.StringVarP(&keyFlag, "key", "k", "", "keypair certificate to read, or - for stdin")
	flags.Uint32VarP(&roundsFlag, "rounds", "R", 0, "key derivation rounds used when encrypting")
	flags.StringVar(&suiteFlag, "suite", "", fmt.Sprintf("crypto suite %v", suite.Names()))
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(keygenCmd)
	RootCmd.AddCommand(pubkeyCmd)
	RootCmd.AddCommand(inspectCmd)
	RootCmd.AddCommand(passwdCmd)
	RootCmd.AddCommand(ConfigCmd)
	RootCmd.AddCommand(logCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := RootCmd.Execute()
	if err == nil {
		return 0
	}

	var shown *shownError
	if !errors.As(err, &shown) {
		fmt.Fprintln(os.Stderr, ui.Error.Sprint("✗")+" "+err.Error())
	}
	return 1
}

// shownError wraps an error whose message was already printed.
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// settings are the effective values of the global flags, with the user
// config filling in anything not given on the command line.
type settings struct {
	suite     suite.Suite
	rounds    uint32
	maxRounds uint32
	output    string
}

// resolveSettings merges the config file with the flags given to cmd.
func resolveSettings(cmd *cobra.Command) (*settings, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Loaded config from %s: %+v", configs.ConfigPath(), config.Defaults)

	resolved := &settings{
		rounds:    config.Defaults.Rounds,
		maxRounds: config.Defaults.MaxRounds,
		output:    config.Defaults.Output,
	}

	suiteName := config.Defaults.Suite
	if cmd.Flags().Changed("suite") {
		suiteName = suiteFlag
	}
	resolved.suite, err = suite.Lookup(suiteName)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("rounds") {
		if roundsFlag == 0 {
			return nil, kerrors.ErrInvalidRounds
		}
		resolved.rounds = roundsFlag
	}

	if cmd.Flags().Changed("output") {
		resolved.output = outputFlag
	}

	Logger.Debugf("Using suite=%s rounds=%d max_rounds=%d", resolved.suite.Name(), resolved.rounds, resolved.maxRounds)
	return resolved, nil
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	outputFlag = ""
	keyFlag = ""
	roundsFlag = 0
	suiteFlag = ""
	resetInspectCommandState()
	resetLogCommandState()
	resetConfigShowState()
	resetCobraFlagState(RootCmd)
}

// resetCobraFlagState clears Changed on every flag of c and its subcommands.
func resetCobraFlagState(c *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}
