package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/conductor/internal/errors"
)

// WriteFile serializes cfg as YAML at path, creating parent directories.
// Used to seed an editable config file with the effective defaults.
func WriteFile(path string, cfg *Config) error {
	if cfg == nil {
		return errors.Wrap(errors.ErrConfigNil, "cannot write nil config")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	if err = os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	return errors.Wrap(atomicWrite(path, data), "failed to write config file")
}
