package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/hocktide/v-c-tool/internal/configs"
	"github.com/hocktide/v-c-tool/internal/ui"

	"github.com/spf13/cobra"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Displays the effective vctool configuration: the values from the user
config file, with built-in defaults for anything it leaves out.

Examples:
  vctool config show
  vctool config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")
		Logger.Debugf("Loading config from %s", configs.ConfigPath())

		config, err := configs.LoadConfig()
		if err != nil {
			return fail(nil, err)
		}

		if configShowJSON {
			return outputConfigJSON(config)
		}
		return outputConfigText(config)
	},
}

func outputConfigJSON(config *configs.Config) error {
	values := make(map[string]string, len(configs.Keys()))
	for _, key := range configs.Keys() {
		value, err := config.Get(key)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read %s: %w", key, err)
		}
		values[key] = value
	}

	output, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return Logger.ErrorfAndReturn("Failed to marshal config to JSON: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

func outputConfigText(config *configs.Config) error {
	fmt.Println(ui.Info.Sprint("Configuration") + " " + ui.Muted.Sprint(configs.ConfigPath()) + ":")
	fmt.Println()

	for _, key := range configs.Keys() {
		value, err := config.Get(key)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read %s: %w", key, err)
		}
		fmt.Printf("  %-14s %s\n", key+":", ui.Success.Sprint(value))
	}
	return nil
}
