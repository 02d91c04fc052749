package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/errors"
)

// DefaultDataDir returns the default conductor data directory,
// typically ~/.conductor on Unix systems.
//
// Returns an error if the home directory cannot be determined.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.ConductorHome), nil
}

// ResolveDataDir returns cfg.Paths.DataDir if set, otherwise the default
// data directory. The directory is created if it does not exist.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.Paths.DataDir
	if dir == "" {
		var err error
		dir, err = DefaultDataDir()
		if err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.Wrap(err, "failed to create data directory")
	}
	return dir, nil
}

// TasksFilePath returns the task record file path under the data directory.
func TasksFilePath(dataDir string) string {
	return filepath.Join(dataDir, constants.TasksFileName)
}

// ConfigFilePath returns the service config file path under the data
// directory.
func ConfigFilePath(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}

// SettingsFilePath returns the mutable project settings file path.
func SettingsFilePath(dataDir string) string {
	return filepath.Join(dataDir, "settings.json")
}

// WorkspacesDir returns the directory holding per-task repository clones.
func WorkspacesDir(dataDir string) string {
	return filepath.Join(dataDir, constants.WorkspacesDir)
}

// OutputsDir returns the directory holding per-task output sinks.
func OutputsDir(dataDir string) string {
	return filepath.Join(dataDir, constants.OutputsDir)
}

// SinkPath returns the output sink file for a task.
func SinkPath(dataDir, taskID string) string {
	return filepath.Join(OutputsDir(dataDir), taskID, constants.SinkFileName)
}

// LogsDir returns the directory holding the rotating service log.
func LogsDir(dataDir string) string {
	return filepath.Join(dataDir, constants.LogsDir)
}
