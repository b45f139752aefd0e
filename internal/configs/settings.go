package configs

import (
	"log"
	"os"
	"path/filepath"
)

type Settings struct {
	ConfigsPath string
}

// UserSettings holds the per-user paths. Tests point ConfigsPath at a
// temporary directory.
var UserSettings *Settings

func init() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// No HOME or XDG_CONFIG_HOME; fall back to the working directory.
		log.Printf("error getting config directory: %s", err)
		configDir = "."
	}

	UserSettings = &Settings{
		ConfigsPath: filepath.Join(configDir, "vctool"),
	}
}
