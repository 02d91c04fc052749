// Package constants provides shared constants for the conductor task service.
//
// This package MUST NOT import any other internal packages.
package constants

// TaskStatus represents the state of a task in the delivery lifecycle.
type TaskStatus string

// Task status values.
//
// The lifecycle is:
//
//	new → streaming → actioning → actioned → completed
//
// with "started" kept for the legacy non-streaming flow (a plan run that
// completed synchronously) and "actioned" reachable directly from streaming
// or actioning via finalize.
const (
	// TaskStatusNew indicates a task has been ingested but no run launched.
	TaskStatusNew TaskStatus = "new"

	// TaskStatusStarted indicates a non-streaming plan run completed.
	TaskStatusStarted TaskStatus = "started"

	// TaskStatusStreaming indicates a streaming plan run is in progress.
	TaskStatusStreaming TaskStatus = "streaming"

	// TaskStatusActioning indicates a streaming action run is in progress.
	TaskStatusActioning TaskStatus = "actioning"

	// TaskStatusActioned indicates the run output has been finalized and a
	// diff computed; the task is ready for follow-ups or push.
	TaskStatusActioned TaskStatus = "actioned"

	// TaskStatusCompleted indicates the changes were pushed as a branch.
	TaskStatusCompleted TaskStatus = "completed"
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// InProgress reports whether an agent run may still be writing the task's
// output sink. Live tail subscribers stop once the status leaves this set.
func (s TaskStatus) InProgress() bool {
	return s == TaskStatusStreaming || s == TaskStatusActioning
}

// RunMode selects how the agent process is invoked.
type RunMode string

// Run modes for agent invocations.
const (
	// RunModePlan asks the agent to produce a plan without editing files.
	RunModePlan RunMode = "plan"

	// RunModeAction lets the agent apply changes to the workspace.
	RunModeAction RunMode = "action"
)

// Priority orders tasks in listings. Unknown values sort last.
type Priority string

// Priority values.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
	PriorityOther  Priority = "Other"
)

// SortOrder returns a numeric rank for listing order (lower sorts first).
func (p Priority) SortOrder() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// NormalizePriority maps free-form CSV input onto a Priority value.
// Matching is case-insensitive; anything unrecognized becomes PriorityOther
// and empty input defaults to PriorityMedium.
func NormalizePriority(s string) Priority {
	switch {
	case s == "":
		return PriorityMedium
	case equalFold(s, "high"):
		return PriorityHigh
	case equalFold(s, "medium"):
		return PriorityMedium
	case equalFold(s, "low"):
		return PriorityLow
	default:
		return PriorityOther
	}
}

// equalFold is a minimal ASCII case-insensitive comparison.
// Avoids importing strings in a leaf package used everywhere.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
