package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/config"
	"github.com/mrz1836/conductor/internal/task"
)

func TestImportCommand(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("CONDUCTOR_PATHS_DATA_DIR", dataDir)

	csvPath := filepath.Join(t.TempDir(), "tasks.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Ticket,Task,Priority\nPROJ-1,Fix login,High\nPROJ-2,Tidy docs,Low\n"), 0600))

	cmd := newImportCmd(&rootFlags{quiet: true})
	cmd.SetArgs([]string{csvPath})

	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Imported 2 task(s)")

	store := task.NewFileStore(config.TasksFilePath(dataDir))

	tasks, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "PROJ-1", tasks[0].Ticket)

	t.Run("re-import skips existing tickets", func(t *testing.T) {
		cmd = newImportCmd(&rootFlags{quiet: true})
		cmd.SetArgs([]string{csvPath})
		out.Reset()
		cmd.SetOut(&out)

		require.NoError(t, cmd.ExecuteContext(context.Background()))
		assert.Contains(t, out.String(), "Imported 0 task(s), skipped 2 existing")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		cmd = newImportCmd(&rootFlags{quiet: true})
		cmd.SetArgs([]string{filepath.Join(dataDir, "absent.csv")})
		cmd.SetOut(&out)
		cmd.SetErr(&out)

		require.Error(t, cmd.ExecuteContext(context.Background()))
	})
}
