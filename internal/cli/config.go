package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides: CAMLQ_FORMAT, CAMLQ_DB,
// CAMLQ_VERBOSE.
const EnvPrefix = "CAMLQ"

// Config holds settings that may come from a config file or the
// environment. Command-line flags take precedence over both.
type Config struct {
	Format  string `mapstructure:"format"`
	DB      string `mapstructure:"db"`
	Verbose bool   `mapstructure:"verbose"`
}

// LoadConfig reads configuration in increasing precedence: defaults, the
// config file, then CAMLQ_* environment variables.
//
// If path is empty, camlq.yaml (or .yml/.json/.toml) is looked up in the
// working directory and is optional. An explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("format", "text")
	v.SetDefault("db", "")
	v.SetDefault("verbose", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("camlq")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
