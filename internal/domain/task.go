// Package domain provides shared domain types for the conductor task service.
// These types are used across all internal packages to ensure consistent data
// structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"time"

	"github.com/mrz1836/conductor/internal/constants"
)

// Task represents a single unit of work tracked through the
// human-and-agent delivery workflow.
//
// Example JSON representation:
//
//	{
//	    "id": "6a1c7a0e-6f0f-4a5e-9d57-6a2f6f3b8f11",
//	    "ticket": "PROJ-123",
//	    "title": "Fix null pointer in parseConfig",
//	    "priority": "High",
//	    "status": "streaming",
//	    "workspace_path": "/home/dev/.conductor/workspaces/6a1c...",
//	    "created_at": "2026-03-01T10:00:00Z",
//	    "schema_version": 1
//	}
type Task struct {
	// ID is the unique identifier for the task (a UUID assigned at
	// ingestion). Immutable for the task's lifetime.
	ID string `json:"id"`

	// Ticket is the external issue reference (e.g. "PROJ-123").
	// Tasks are deduplicated by ticket at import.
	Ticket string `json:"ticket"`

	// Title is the human-readable task summary from the import.
	Title string `json:"title"`

	// Link is an optional URL back to the external tracker.
	Link string `json:"link,omitempty"`

	// Priority orders tasks in listings (High/Medium/Low/Other).
	Priority constants.Priority `json:"priority"`

	// Assignee is the person responsible for reviewing the task.
	Assignee string `json:"assignee,omitempty"`

	// State is a free-text workflow label from the tracker (default
	// "Ready"). Display-only; never consulted by the engine.
	State string `json:"state"`

	// Prompt is the user-supplied instruction text handed to the agent.
	Prompt string `json:"prompt"`

	// Status is the current position in the delivery state machine.
	Status constants.TaskStatus `json:"status"`

	// WorkspacePath points at this task's private clone of the target
	// repository. Exactly one workspace exists per task while the status
	// is past "new"; it is removed when the task is deleted.
	WorkspacePath string `json:"workspace_path,omitempty"`

	// Output is the accumulated human-readable text extracted from the
	// agent's output sink. Follow-up runs append to it.
	Output string `json:"output,omitempty"`

	// Diff is the most recent source-control diff of the workspace.
	Diff string `json:"diff,omitempty"`

	// CreatedAt is when the task was ingested.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task record was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// CompletedAt is when the task's branch was pushed (nil before).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Transitions is the audit trail of status changes.
	Transitions []Transition `json:"transitions,omitempty"`

	// SchemaVersion indicates the version of the Task struct schema.
	SchemaVersion int `json:"schema_version"`
}

// Transition records a single status change for auditability.
type Transition struct {
	// FromStatus is the status before the transition.
	FromStatus constants.TaskStatus `json:"from_status"`

	// ToStatus is the status after the transition.
	ToStatus constants.TaskStatus `json:"to_status"`

	// Timestamp is when the transition occurred (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Reason is an optional explanation (e.g. "plan run launched").
	Reason string `json:"reason,omitempty"`
}

// HasWorkspace reports whether the task currently owns a workspace clone.
func (t *Task) HasWorkspace() bool {
	return t.WorkspacePath != ""
}

// AppendOutput adds text to the accumulated output, inserting the given
// separator between existing and new content.
func (t *Task) AppendOutput(separator, text string) {
	if t.Output == "" {
		t.Output = text
		return
	}
	t.Output += separator + text
}
