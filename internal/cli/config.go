package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds settings resolved from flags, DOCSNAP_* environment
// variables, the config file and defaults, in that order of precedence.
type Config struct {
	Format        string `mapstructure:"format"`
	Verbose       bool   `mapstructure:"verbose"`
	Compression   string `mapstructure:"compression"`
	PreserveMtime bool   `mapstructure:"preserve_mtime"`
}

// configKeys maps config keys to the flags that override them.
var configKeys = map[string]string{
	"format":         "format",
	"verbose":        "verbose",
	"compression":    "compression",
	"preserve_mtime": "preserve-mtime",
}

// LoadConfig resolves the configuration for a command.
//
// Without an explicit file, config.yaml is looked up in the user config
// directory ($XDG_CONFIG_HOME/docsnap) and then the working directory; a
// missing file is not an error. An explicit file must exist.
func LoadConfig(configFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		v.SetConfigFile(configFile)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "docsnap"))
		}
		v.AddConfigPath(".")
	}

	// Defaults to allow running without config file
	v.SetDefault("format", "text")
	v.SetDefault("verbose", false)
	v.SetDefault("compression", "zstd")
	v.SetDefault("preserve_mtime", false)

	// DOCSNAP_FORMAT, DOCSNAP_PRESERVE_MTIME, ...
	v.SetEnvPrefix("DOCSNAP")
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range configKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
