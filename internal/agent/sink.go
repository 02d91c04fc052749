package agent

import (
	"os"
	"path/filepath"

	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// CreateSink creates (or truncates) the sink file at path, creating parent
// directories as needed. Each launch starts from an empty sink so tail
// cursors and extraction always see exactly one run's output.
func CreateSink(path string) (*os.File, error) {
	if path == "" {
		return nil, conductorerrors.Wrap(conductorerrors.ErrEmptyValue, "sink path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, conductorerrors.Wrap(err, "failed to create sink directory")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640) //nolint:gosec // path is derived from the task ID
	if err != nil {
		return nil, conductorerrors.Wrap(err, "failed to create sink file")
	}

	return f, nil
}

// SinkExists reports whether a sink file is present at path.
func SinkExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
