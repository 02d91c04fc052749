package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mrz1836/conductor/internal/ctxutil"
	"github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/flock"
)

// Settings holds the mutable project settings edited at runtime through the
// API: which repository tasks run against, who may be assigned work, and
// whether agent runs may bypass permission prompts.
//
// Unlike Config, Settings changes while the service runs and is persisted as
// a JSON record with load/save semantics.
type Settings struct {
	// RepoURL is the repository cloned into each task workspace.
	// Start is rejected while this is empty.
	RepoURL string `json:"repo_url"`

	// Assignees filters CSV import: when non-empty, rows whose assignee
	// is not in this list are skipped.
	Assignees []string `json:"assignees,omitempty"`

	// SkipPermissions passes the capability-escalation flag to agent runs.
	SkipPermissions bool `json:"skip_permissions"`
}

// settingsLockTimeout bounds the wait for the settings file lock.
const settingsLockTimeout = 5 * time.Second

// SettingsStore persists Settings to a JSON file with exclusive locking and
// atomic writes, mirroring the task record store.
type SettingsStore struct {
	path string
}

// NewSettingsStore creates a SettingsStore over the given file path.
// The file is created with defaults on first Save; Load of a missing file
// returns zero-value Settings.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load reads the current settings. A missing file yields zero-value
// Settings, not an error.
func (s *SettingsStore) Load(ctx context.Context) (*Settings, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path) //#nosec G304 -- path is constructed from the validated data dir
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, errors.Wrap(err, "failed to read settings")
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, errors.Wrap(err, "failed to parse settings: corrupted file")
	}
	return &settings, nil
}

// Save writes settings atomically under an exclusive lock.
func (s *SettingsStore) Save(ctx context.Context, settings *Settings) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if settings == nil {
		return errors.Wrap(errors.ErrEmptyValue, "settings")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create settings directory")
	}

	unlock, err := acquirePathLock(ctx, s.path+".lock", settingsLockTimeout)
	if err != nil {
		return errors.Wrap(err, "failed to lock settings")
	}
	defer unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}

	return errors.Wrap(atomicWrite(s.path, data), "failed to write settings")
}

// acquirePathLock opens (creating if needed) a lock file and acquires an
// exclusive lock on it, retrying until the timeout elapses. The returned
// function releases the lock and closes the file.
func acquirePathLock(ctx context.Context, lockPath string, timeout time.Duration) (func(), error) {
	f, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE, 0o600) //#nosec G304 -- lock path derives from trusted base
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	for {
		if err := flock.Exclusive(f.Fd()); err == nil {
			return func() {
				_ = flock.Unlock(f.Fd())
				_ = f.Close()
			}, nil
		}
		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, errors.ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// atomicWrite writes data to path via a temp file and rename so readers
// never observe a partial record.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
