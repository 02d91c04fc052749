package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/conductor/internal/config"
)

func TestConfigInitCommand(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("CONDUCTOR_PATHS_DATA_DIR", dataDir)

	run := func(args ...string) (string, error) {
		cmd := newConfigCmd(&rootFlags{})
		cmd.SetArgs(args)

		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)

		err := cmd.ExecuteContext(context.Background())

		return out.String(), err
	}

	out, err := run("init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	path := config.ConfigFilePath(dataDir)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, config.DefaultConfig().Server.ListenAddr, cfg.Server.ListenAddr)

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		_, err = run("init")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("force overwrites", func(t *testing.T) {
		_, err = run("init", "--force")
		require.NoError(t, err)
	})
}
