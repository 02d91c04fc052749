// Package workspace manages per-task repository clones.
//
// Each task owns exactly one workspace directory for as long as it is past
// the "new" status; the directory is wiped and recreated on restart and
// removed when the task is deleted.
package workspace

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mrz1836/conductor/internal/ctxutil"
	"github.com/mrz1836/conductor/internal/errors"
)

// Manager creates and removes task workspace directories under a base dir.
type Manager struct {
	baseDir string
}

// NewManager creates a Manager rooted at baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Path returns the workspace directory for a task without touching disk.
func (m *Manager) Path(taskID string) string {
	return filepath.Join(m.baseDir, taskID)
}

// Create prepares a fresh, empty workspace for the task, removing any stale
// directory from a previous run. Returns the workspace path.
func (m *Manager) Create(ctx context.Context, taskID string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}
	if taskID == "" {
		return "", errors.Wrap(errors.ErrEmptyValue, "task id")
	}

	dir := m.Path(taskID)
	if err := os.RemoveAll(dir); err != nil {
		return "", errors.Wrapf(err, "failed to remove stale workspace for task %s", taskID)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.Wrapf(err, "failed to create workspace for task %s", taskID)
	}
	return dir, nil
}

// Remove deletes the task's workspace. Removing a workspace that does not
// exist is not an error.
func (m *Manager) Remove(ctx context.Context, taskID string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if taskID == "" {
		return errors.Wrap(errors.ErrEmptyValue, "task id")
	}
	return errors.Wrapf(os.RemoveAll(m.Path(taskID)), "failed to remove workspace for task %s", taskID)
}

// Exists reports whether the task's workspace directory is present.
func (m *Manager) Exists(taskID string) bool {
	info, err := os.Stat(m.Path(taskID))
	return err == nil && info.IsDir()
}
