// Package git provides the source-control collaborator for conductor.
// This file defines the Runner interface for git CLI operations.
package git

import "context"

// Runner defines the source-control operations the task engine invokes.
// All operations are synchronous and blocking; a non-zero git exit is
// returned as a recoverable error value. Operations run in the given
// workspace directory and use context for cancellation.
type Runner interface {
	// Clone clones repoURL into destDir (which must exist and be empty).
	Clone(ctx context.Context, repoURL, destDir string) error

	// DiffUnstaged returns the diff of unstaged changes in the working
	// tree, including newly added file contents via intent-to-add.
	DiffUnstaged(ctx context.Context, workDir string) (string, error)

	// CurrentBranch returns the name of the currently checked out branch.
	CurrentBranch(ctx context.Context, workDir string) (string, error)

	// BranchCommitPush creates a branch named after the ticket and task
	// title, stages everything, commits, and pushes with upstream
	// tracking. Returns the branch name on success.
	BranchCommitPush(ctx context.Context, workDir, ticket, title string) (string, error)
}

// CLIRunner implements Runner by shelling out to the git CLI.
type CLIRunner struct{}

// NewCLIRunner returns a Runner backed by the git CLI.
func NewCLIRunner() *CLIRunner {
	return &CLIRunner{}
}

// Clone clones repoURL into destDir.
func (r *CLIRunner) Clone(ctx context.Context, repoURL, destDir string) error {
	_, err := RunCommand(ctx, destDir, "clone", repoURL, ".")
	return err
}

// DiffUnstaged returns the diff of the working tree against HEAD.
// Untracked files are registered with intent-to-add first so brand-new files
// written by the agent show up in the diff.
func (r *CLIRunner) DiffUnstaged(ctx context.Context, workDir string) (string, error) {
	// Ignore intent-to-add failures; diff still works for tracked files.
	_, _ = RunCommand(ctx, workDir, "add", "--intent-to-add", "--all")
	return RunCommand(ctx, workDir, "diff")
}

// CurrentBranch returns the checked-out branch name.
func (r *CLIRunner) CurrentBranch(ctx context.Context, workDir string) (string, error) {
	return RunCommand(ctx, workDir, "branch", "--show-current")
}

// CreateBranch checks out a new branch in the workspace.
func (r *CLIRunner) CreateBranch(ctx context.Context, workDir, branch string) error {
	_, err := RunCommand(ctx, workDir, "checkout", "-b", branch)
	return err
}

// Add stages all changes in the workspace.
func (r *CLIRunner) Add(ctx context.Context, workDir string) error {
	_, err := RunCommand(ctx, workDir, "add", ".")
	return err
}

// Commit records staged changes with the given message.
func (r *CLIRunner) Commit(ctx context.Context, workDir, message string) error {
	_, err := RunCommand(ctx, workDir, "commit", "-m", message)
	return err
}

// Push pushes branch to origin with upstream tracking.
func (r *CLIRunner) Push(ctx context.Context, workDir, branch string) error {
	_, err := RunCommand(ctx, workDir, "push", "-u", "origin", branch)
	return err
}

// BranchCommitPush creates the delivery branch, commits all changes, and
// pushes it with upstream tracking.
func (r *CLIRunner) BranchCommitPush(ctx context.Context, workDir, ticket, title string) (string, error) {
	branch := BranchName(ticket, title)

	if err := r.CreateBranch(ctx, workDir, branch); err != nil {
		return "", err
	}

	// Report the ref git actually checked out rather than the derived name.
	branch, err := r.CurrentBranch(ctx, workDir)
	if err != nil {
		return "", err
	}

	if err := r.Add(ctx, workDir); err != nil {
		return "", err
	}
	if err := r.Commit(ctx, workDir, CommitMessage(title)); err != nil {
		return "", err
	}
	if err := r.Push(ctx, workDir, branch); err != nil {
		return "", err
	}

	return branch, nil
}

// Compile-time check that CLIRunner implements Runner.
var _ Runner = (*CLIRunner)(nil)
