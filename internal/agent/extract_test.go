package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

func writeSink(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "agent_output.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestExtractOutput(t *testing.T) {
	t.Run("assembles message and result records", func(t *testing.T) {
		path := writeSink(t, `{"type":"message","content":[{"type":"text","text":"hello"}]}
{"type":"result","result":"done"}
`)

		got, err := ExtractOutput(path)
		require.NoError(t, err)
		assert.Equal(t, "hello\ndone\n", got)
	})

	t.Run("delta fragments concatenate without separators", func(t *testing.T) {
		path := writeSink(t, `{"delta":{"text":"par"}}
{"delta":{"text":"tial"}}
{"type":"result","result":"ok"}
`)

		got, err := ExtractOutput(path)
		require.NoError(t, err)
		assert.Equal(t, "partialok\n", got)
	})

	t.Run("malformed lines contribute nothing but do not fail", func(t *testing.T) {
		path := writeSink(t, `{"type":"message","content":[{"type":"text","text":"a"}]}
this line is not JSON
{"type":"result","result":"b"}
`)

		got, err := ExtractOutput(path)
		require.NoError(t, err)
		assert.Equal(t, "a\nb\n", got)
	})

	t.Run("empty and blank lines are skipped", func(t *testing.T) {
		path := writeSink(t, "\n   \n{\"text\":\"only\"}\n\n")

		got, err := ExtractOutput(path)
		require.NoError(t, err)
		assert.Equal(t, "only\n", got)
	})

	t.Run("empty sink yields empty output", func(t *testing.T) {
		path := writeSink(t, "")

		got, err := ExtractOutput(path)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("missing sink returns ErrSinkNotFound", func(t *testing.T) {
		_, err := ExtractOutput(filepath.Join(t.TempDir(), "missing.jsonl"))
		require.ErrorIs(t, err, conductorerrors.ErrSinkNotFound)
	})

	t.Run("extraction is idempotent", func(t *testing.T) {
		path := writeSink(t, `{"type":"message","content":[{"type":"text","text":"hello"}]}
{"type":"result","result":"done"}
`)

		first, err := ExtractOutput(path)
		require.NoError(t, err)

		second, err := ExtractOutput(path)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
