package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/hocktide/v-c-tool/internal/suite"
)

// Built-in defaults, used for any setting the config file leaves out.
const (
	DefaultRounds    uint32 = 50000
	DefaultMaxRounds uint32 = 1 << 24
	DefaultOutput           = "keypair.cert"
)

type Config struct {
	Defaults Defaults `toml:"defaults"`
}

type Defaults struct {
	Suite     string `toml:"suite"`
	Rounds    uint32 `toml:"rounds"`
	MaxRounds uint32 `toml:"max_rounds"`
	Output    string `toml:"output"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			Suite:     suite.Default,
			Rounds:    DefaultRounds,
			MaxRounds: DefaultMaxRounds,
			Output:    DefaultOutput,
		},
	}
}

// ConfigPath returns the location of the user config file.
func ConfigPath() string {
	return filepath.Join(UserSettings.ConfigsPath, "config.toml")
}

// LoadConfig loads the user configuration, falling back to the built-in
// defaults for a missing file or missing keys.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(ConfigPath()); errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}

	if err := LoadTOML(ConfigPath(), config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", ConfigPath(), err)
	}

	return config, nil
}

// SaveConfig writes the user configuration.
func SaveConfig(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := SaveTOML(ConfigPath(), config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if _, err := suite.Lookup(c.Defaults.Suite); err != nil {
		return fmt.Errorf("suite: %w", err)
	}
	if c.Defaults.Rounds == 0 {
		return errors.New("rounds must be greater than zero")
	}
	if c.Defaults.MaxRounds == 0 {
		return errors.New("max_rounds must be greater than zero")
	}
	if c.Defaults.Rounds > c.Defaults.MaxRounds {
		return fmt.Errorf("rounds (%d) must not exceed max_rounds (%d)", c.Defaults.Rounds, c.Defaults.MaxRounds)
	}
	if c.Defaults.Output == "" {
		return errors.New("output must not be empty")
	}
	return nil
}

// settable maps config keys to the functions that parse and store them.
var settable = map[string]func(*Defaults, string) error{
	"suite": func(d *Defaults, value string) error {
		d.Suite = value
		return nil
	},
	"rounds": func(d *Defaults, value string) error {
		rounds, err := parseRounds(value)
		d.Rounds = rounds
		return err
	},
	"max_rounds": func(d *Defaults, value string) error {
		rounds, err := parseRounds(value)
		d.MaxRounds = rounds
		return err
	},
	"output": func(d *Defaults, value string) error {
		d.Output = value
		return nil
	},
}

// Keys lists the settings Set accepts.
func Keys() []string {
	keys := make([]string, 0, len(settable))
	for key := range settable {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value into the named setting. The config is left unchanged
// if the result would not validate.
func (c *Config) Set(key, value string) error {
	set, ok := settable[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, Keys())
	}

	updated := c.Defaults
	if err := set(&updated, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	candidate := Config{Defaults: updated}
	if err := candidate.Validate(); err != nil {
		return err
	}

	c.Defaults = updated
	return nil
}

// Get returns the named setting as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "suite":
		return c.Defaults.Suite, nil
	case "rounds":
		return strconv.FormatUint(uint64(c.Defaults.Rounds), 10), nil
	case "max_rounds":
		return strconv.FormatUint(uint64(c.Defaults.MaxRounds), 10), nil
	case "output":
		return c.Defaults.Output, nil
	}
	return "", fmt.Errorf("unknown config key %q (valid keys: %v)", key, Keys())
}

func parseRounds(value string) (uint32, error) {
	rounds, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not a round count between 1 and %d", value, uint32(math.MaxUint32))
	}
	if rounds == 0 {
		return 0, errors.New("rounds must be greater than zero")
	}
	return uint32(rounds), nil
}
