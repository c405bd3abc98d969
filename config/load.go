package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/teranos/waitline/errors"
)

// defaultConfigFilePermissions matches the rest of the fleet's
// convention for freshly written config files: operator-readable only.
const defaultConfigFilePermissions = 0o600

var (
	globalConfig  *Config
	viperInstance *viper.Viper
)

// Load reads the waitline configuration using Viper: defaults, then an
// optional waitline.toml found in the working directory, then
// WAITLINE_-prefixed environment variables, in increasing precedence.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &cfg
	return globalConfig, nil
}

// GetViper returns the shared Viper instance for advanced access.
func GetViper() *viper.Viper {
	return initViper()
}

// LoadFromFile loads configuration from a specific TOML file, ignoring
// environment variables and the global cache. Used by the simulation
// harness and tests that need a config independent of the process
// environment.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}
	return &cfg, nil
}

// WriteDefault writes the builtin default configuration to path as TOML,
// encoded directly with BurntSushi/toml rather than through Viper, so an
// operator bootstrapping a new node gets a clean waitline.toml to edit
// instead of having to reverse-engineer the key names from defaults.go.
func WriteDefault(path string) error {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "failed to unmarshal default config")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, defaultConfigFilePermissions)
	if err != nil {
		return errors.Wrapf(err, "failed to create config file %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrapf(err, "failed to encode default config to %s", path)
	}
	return nil
}

// Reset clears cached configuration state. Tests call this between runs
// so each gets a fresh Load().
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix("WAITLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigName("waitline")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			// A malformed config file is worth surfacing, but we don't want
			// to make Load() fail for the common case of no file at all;
			// defaults and env vars still apply.
			_ = err
		}
	}

	viperInstance = v
	return v
}
