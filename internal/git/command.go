// Package git provides the source-control collaborator for conductor.
// This file provides shared git command execution utilities.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// RunCommand executes a git command in the specified directory and returns
// its output. All errors are wrapped with ErrGitOperation and include stderr
// for debugging; a non-zero exit is always surfaced as an error value, never
// a panic.
func RunCommand(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally, not user input
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(stderr.String()), conductorerrors.ErrGitOperation)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], conductorerrors.ErrGitOperation)
	}

	return strings.TrimSpace(stdout.String()), nil
}
