package cmd

import (
	"fmt"
	"strings"

	"github.com/hocktide/v-c-tool/internal/configs"
	"github.com/hocktide/v-c-tool/internal/ui"

	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vctool configuration",
	Long: `Provides commands for viewing and changing the defaults vctool uses when
a flag is not given.

Settings:
  suite        crypto suite for new and existing certificates
  rounds       key derivation rounds used when encrypting
  max_rounds   largest round count accepted when decrypting
  output       file keygen writes when --output is not given

Examples:
  # Show the current configuration
  vctool config show

  # Change a setting
  vctool config set rounds 200000

  # Print a single setting
  vctool config get suite`,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSetCmd)
	ConfigCmd.AddCommand(configGetCmd)
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration setting",
	Long: fmt.Sprintf(`Changes one setting in the user configuration file.

Valid keys: %s

Examples:
  vctool config set suite xchacha-blake3-v1
  vctool config set rounds 200000`, strings.Join(configs.Keys(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		Logger.Infof("Starting config set command")
		Logger.Debugf("Setting %s=%s", key, value)

		config, err := configs.LoadConfig()
		if err != nil {
			return fail(nil, err)
		}
		if err := config.Set(key, value); err != nil {
			return fail(nil, err)
		}
		if err := configs.SaveConfig(config); err != nil {
			return fail(nil, err)
		}

		Logger.Infof("Config saved to %s", configs.ConfigPath())
		fmt.Println(ui.Success.Sprint("✓") + " Set " + ui.Highlight.Sprint(key) + " to " + ui.Highlight.Sprint(value))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := configs.LoadConfig()
		if err != nil {
			return fail(nil, err)
		}
		value, err := config.Get(args[0])
		if err != nil {
			return fail(nil, err)
		}
		fmt.Println(value)
		return nil
	},
}
