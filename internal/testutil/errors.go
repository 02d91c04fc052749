// Package testutil provides testing utilities for conductor.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockGitFailed indicates a mock git command failed (used in tests).
	ErrMockGitFailed = errors.New("git command failed")

	// ErrMockLaunch indicates a mock agent launch failure.
	ErrMockLaunch = errors.New("launch refused")
)
