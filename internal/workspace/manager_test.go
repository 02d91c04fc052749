package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/errors"
)

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	m := NewManager(t.TempDir())

	t.Run("creates fresh directory", func(t *testing.T) {
		dir, err := m.Create(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, m.Path("t-1"), dir)
		assert.True(t, m.Exists("t-1"))
	})

	t.Run("wipes stale contents", func(t *testing.T) {
		dir, err := m.Create(ctx, "t-2")
		require.NoError(t, err)
		stale := filepath.Join(dir, "leftover.txt")
		require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))

		_, err = m.Create(ctx, "t-2")
		require.NoError(t, err)
		assert.NoFileExists(t, stale)
	})

	t.Run("empty task id rejected", func(t *testing.T) {
		_, err := m.Create(ctx, "")
		assert.ErrorIs(t, err, errors.ErrEmptyValue)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := m.Create(canceled, "t-3")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestManager_Remove(t *testing.T) {
	ctx := context.Background()
	m := NewManager(t.TempDir())

	_, err := m.Create(ctx, "t-1")
	require.NoError(t, err)

	require.NoError(t, m.Remove(ctx, "t-1"))
	assert.False(t, m.Exists("t-1"))

	// Removing again is a no-op.
	assert.NoError(t, m.Remove(ctx, "t-1"))
}
