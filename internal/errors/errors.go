// Package errors provides centralized error handling for conductor.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be checked
// using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrLaunchFailed indicates the external agent process could not be
	// started (missing binary, permission denied). A run that starts and
	// then exits non-zero is NOT a launch failure.
	ErrLaunchFailed = errors.New("agent launch failed")

	// ErrRunActive indicates a launch was attempted while another run for
	// the same task is still live. Runs are never queued.
	ErrRunActive = errors.New("agent run already active")

	// ErrInvalidTransition indicates a task state-machine guard rejected
	// the requested transition. The task status is left unchanged.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrGitOperation indicates a git command (clone, diff, push, etc.)
	// returned a non-zero exit.
	ErrGitOperation = errors.New("git operation failed")

	// ErrTaskNotFound indicates the requested task id does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskExists indicates an attempt to create a task with an id that
	// is already present in the store.
	ErrTaskExists = errors.New("task already exists")

	// ErrSinkNotFound indicates the output sink never appeared within the
	// bounded startup wait, or was removed before finalize.
	ErrSinkNotFound = errors.New("output sink not found")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrEmptyPrompt indicates a run was requested without a prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrRepoNotConfigured indicates no repository URL has been configured,
	// so a workspace cannot be cloned.
	ErrRepoNotConfigured = errors.New("repository not configured")

	// ErrWorkspaceMissing indicates the task's workspace directory does not
	// exist on disk.
	ErrWorkspaceMissing = errors.New("workspace directory missing")

	// ErrLockTimeout indicates a file lock could not be acquired within the
	// timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates a configuration value failed validation.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrBadCSV indicates the uploaded CSV could not be parsed at all.
	// Row-level problems are reported per row, not with this sentinel.
	ErrBadCSV = errors.New("csv not parseable")
)
