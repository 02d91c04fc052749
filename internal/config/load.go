package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/conductor/internal/errors"
)

// newViperInstance creates a new Viper instance with standard conductor
// configuration: defaults, CONDUCTOR_ env prefix, and key replacer so
// CONDUCTOR_SERVER_LISTEN_ADDR maps to server.listen_addr.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CONDUCTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (CONDUCTOR_* prefix)
//  2. Config file (configFile if non-empty, else <data-dir>/config.yaml)
//  3. Built-in defaults
//
// Missing config files are not an error; defaults plus environment are a
// complete configuration.
func Load(ctx context.Context, configFile string) (*Config, error) {
	v := newViperInstance()

	path := configFile
	if path == "" {
		if dir, err := DefaultDataDir(); err == nil {
			path = ConfigFilePath(dir)
		}
	}

	if path != "" && fileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	} else if configFile != "" {
		// An explicitly requested config file must exist.
		return nil, errors.Wrapf(errors.ErrConfigInvalid, "config file not found: %s", configFile)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("listen_addr", cfg.Server.ListenAddr).
		Str("agent_binary", cfg.Agent.Binary).
		Dur("tail.poll_interval", cfg.Tail.PollInterval).
		Msg("configuration loaded")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from
// strings and comma-separated string slices.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
