package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, constants.DefaultListenAddr, cfg.Server.ListenAddr)
	assert.Equal(t, constants.ServerShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, constants.AgentBinary, cfg.Agent.Binary)
	assert.Equal(t, constants.DefaultAgentTimeout, cfg.Agent.Timeout)
	assert.Equal(t, constants.TailPollInterval, cfg.Tail.PollInterval)
	assert.Equal(t, constants.SinkWaitTimeout, cfg.Tail.SinkWaitTimeout)
	assert.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen addr", func(c *Config) { c.Server.ListenAddr = "" }},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }},
		{"empty agent binary", func(c *Config) { c.Agent.Binary = "" }},
		{"negative agent timeout", func(c *Config) { c.Agent.Timeout = -time.Second }},
		{"zero poll interval", func(c *Config) { c.Tail.PollInterval = 0 }},
		{"zero sink wait", func(c *Config) { c.Tail.SinkWaitTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrConfigInvalid)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil), errors.ErrConfigNil)
	})
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"server:\n  listen_addr: \":8080\"\nagent:\n  timeout: 5m\n"), 0o600))

	cfg, err := Load(context.Background(), cfgPath)
	require.NoError(t, err)

	// File values applied
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 5*time.Minute, cfg.Agent.Timeout)

	// Untouched keys keep defaults
	assert.Equal(t, constants.AgentBinary, cfg.Agent.Binary)
	assert.Equal(t, constants.TailPollInterval, cfg.Tail.PollInterval)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("agent:\n  binary: claude\n"), 0o600))

	t.Setenv("CONDUCTOR_AGENT_BINARY", "claude-next")

	cfg, err := Load(context.Background(), cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "claude-next", cfg.Agent.Binary)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigInvalid)
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSettingsStore(filepath.Join(t.TempDir(), "settings.json"))

	t.Run("load missing returns zero settings", func(t *testing.T) {
		settings, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, settings.RepoURL)
		assert.False(t, settings.SkipPermissions)
	})

	t.Run("save then load", func(t *testing.T) {
		in := &Settings{
			RepoURL:         "git@example.com:org/repo.git",
			Assignees:       []string{"ana", "bo"},
			SkipPermissions: true,
		}
		require.NoError(t, store.Save(ctx, in))

		out, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("save nil rejected", func(t *testing.T) {
		err := store.Save(ctx, nil)
		assert.ErrorIs(t, err, errors.ErrEmptyValue)
	})
}

func TestSettingsStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewSettingsStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupted")
}

func TestPaths(t *testing.T) {
	dataDir := "/data/conductor"

	assert.Equal(t, filepath.Join(dataDir, "tasks.json"), TasksFilePath(dataDir))
	assert.Equal(t, filepath.Join(dataDir, "config.yaml"), ConfigFilePath(dataDir))
	assert.Equal(t, filepath.Join(dataDir, "settings.json"), SettingsFilePath(dataDir))
	assert.Equal(t, filepath.Join(dataDir, "workspaces"), WorkspacesDir(dataDir))
	assert.Equal(t, filepath.Join(dataDir, "outputs"), OutputsDir(dataDir))
	assert.Equal(t,
		filepath.Join(dataDir, "outputs", "t-1", "agent_output.jsonl"),
		SinkPath(dataDir, "t-1"))
	assert.Equal(t, filepath.Join(dataDir, "logs"), LogsDir(dataDir))
}
