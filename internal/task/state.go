// Package task owns the task lifecycle: the status state machine, the
// persisted task store, and the engine that drives agent runs and the
// source-control collaborator through that state machine.
package task

import (
	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// ValidTransitions defines the legal status transitions. Any attempt
// outside this map is rejected and leaves the task unchanged; the guards
// here are the only defense against two operations racing on one task.
var ValidTransitions = map[constants.TaskStatus][]constants.TaskStatus{
	constants.TaskStatusNew:       {constants.TaskStatusStreaming},
	constants.TaskStatusStarted:   {constants.TaskStatusActioning},
	constants.TaskStatusStreaming: {constants.TaskStatusActioning, constants.TaskStatusActioned},
	constants.TaskStatusActioning: {constants.TaskStatusActioned},
	constants.TaskStatusActioned:  {constants.TaskStatusActioned, constants.TaskStatusCompleted},
	constants.TaskStatusCompleted: {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to constants.TaskStatus) bool {
	for _, allowed := range ValidTransitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// ApplyTransition moves t to the target status, appends an audit record and
// refreshes timestamps. Illegal transitions return ErrInvalidTransition
// without mutating the task.
func ApplyTransition(t *domain.Task, to constants.TaskStatus, reason string, clk clock.Clock) error {
	if !CanTransition(t.Status, to) {
		return conductorerrors.Wrapf(conductorerrors.ErrInvalidTransition,
			"task %s cannot move from %s to %s", t.ID, t.Status, to)
	}

	now := clk.Now().UTC()

	t.Transitions = append(t.Transitions, domain.Transition{
		FromStatus: t.Status,
		ToStatus:   to,
		Timestamp:  now,
		Reason:     reason,
	})
	t.Status = to
	t.UpdatedAt = now

	if to == constants.TaskStatusCompleted {
		t.CompletedAt = &now
	}

	return nil
}
