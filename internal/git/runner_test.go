package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// initRepo creates a git repository with one committed file and returns its
// path. Tests are skipped when the git binary is unavailable.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	ctx := context.Background()
	dir := t.TempDir()

	for _, args := range [][]string{
		{"init", "--initial-branch", "main"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test"},
	} {
		_, err := RunCommand(ctx, dir, args...)
		require.NoError(t, err)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o600))
	_, err := RunCommand(ctx, dir, "add", ".")
	require.NoError(t, err)
	_, err = RunCommand(ctx, dir, "commit", "-m", "initial")
	require.NoError(t, err)

	return dir
}

func TestRunCommand_ErrorIncludesStderr(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	_, err := RunCommand(context.Background(), t.TempDir(), "rev-parse", "--show-toplevel")
	require.Error(t, err)
	assert.ErrorIs(t, err, conductorerrors.ErrGitOperation)
	assert.Contains(t, err.Error(), "git rev-parse failed")
}

func TestCLIRunner_CurrentBranch(t *testing.T) {
	dir := initRepo(t)

	branch, err := NewCLIRunner().CurrentBranch(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestCLIRunner_DiffUnstaged(t *testing.T) {
	dir := initRepo(t)
	runner := NewCLIRunner()
	ctx := context.Background()

	t.Run("clean tree yields empty diff", func(t *testing.T) {
		diff, err := runner.DiffUnstaged(ctx, dir)
		require.NoError(t, err)
		assert.Empty(t, diff)
	})

	t.Run("modified file appears in diff", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0o600))

		diff, err := runner.DiffUnstaged(ctx, dir)
		require.NoError(t, err)
		assert.Contains(t, diff, "README.md")
		assert.Contains(t, diff, "+changed")
	})

	t.Run("untracked file appears in diff", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "new.go"), []byte("package new\n"), 0o600))

		diff, err := runner.DiffUnstaged(ctx, dir)
		require.NoError(t, err)
		assert.Contains(t, diff, "new.go")
	})
}

func TestCLIRunner_Clone(t *testing.T) {
	src := initRepo(t)
	dest := t.TempDir()

	require.NoError(t, NewCLIRunner().Clone(context.Background(), src, dest))
	assert.FileExists(t, filepath.Join(dest, "README.md"))
}

func TestCLIRunner_Clone_BadURL(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	err := NewCLIRunner().Clone(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, conductorerrors.ErrGitOperation)
}

func TestCLIRunner_BranchCommitPush_NoRemote(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feature.txt"), []byte("x\n"), 0o600))

	// Branch creation and commit succeed; push fails because no origin is
	// configured. The failure must surface as an error value.
	_, err := NewCLIRunner().BranchCommitPush(context.Background(), dir, "PROJ-1", "Add feature file")
	require.Error(t, err)
	assert.ErrorIs(t, err, conductorerrors.ErrGitOperation)

	// The branch was still created before the push failed.
	branch, err := NewCLIRunner().CurrentBranch(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "proj-1-add-feature-file", branch)
}

func TestCLIRunner_BranchCommitPush_WithRemote(t *testing.T) {
	dir := initRepo(t)
	ctx := context.Background()

	remote := t.TempDir()
	_, err := RunCommand(ctx, remote, "init", "--bare")
	require.NoError(t, err)
	_, err = RunCommand(ctx, dir, "remote", "add", "origin", remote)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "feature.txt"), []byte("x\n"), 0o600))

	// The returned name is the ref git reports as checked out.
	branch, err := NewCLIRunner().BranchCommitPush(ctx, dir, "PROJ-2", "Ship the feature")
	require.NoError(t, err)
	assert.Equal(t, "proj-2-ship-the-feature", branch)

	out, err := RunCommand(ctx, remote, "branch", "--list", branch)
	require.NoError(t, err)
	assert.Contains(t, out, branch)
}
