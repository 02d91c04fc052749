package task

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/conductor/internal/agent"
	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/config"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/ctxutil"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/git"
	"github.com/mrz1836/conductor/internal/workspace"
)

// followupSeparator divides the original output from each follow-up run's
// appended text.
const followupSeparator = "\n\n--- FOLLOW-UP OUTPUT ---\n\n"

// Store is the task persistence surface the engine depends on.
type Store interface {
	List(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, updated *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// AgentRunner launches agent processes. Satisfied by agent.Supervisor.
type AgentRunner interface {
	Launch(ctx context.Context, spec agent.LaunchSpec) (*agent.Run, error)
	RunSync(ctx context.Context, spec agent.LaunchSpec) (string, error)
}

// SettingsSource loads the runtime-mutable settings record.
type SettingsSource interface {
	Load(ctx context.Context) (*config.Settings, error)
}

// Engine drives tasks through the delivery state machine. Each operation
// validates the transition guard first, performs its side effects, and only
// then records the transition — a failed collaborator call never leaves a
// task half-transitioned.
type Engine struct {
	store      Store
	runs       AgentRunner
	git        git.Runner
	workspaces *workspace.Manager
	settings   SettingsSource
	sinkPath   func(taskID string) string
	clk        clock.Clock
	logger     zerolog.Logger
}

// EngineDeps collects the engine's collaborators.
type EngineDeps struct {
	Store      Store
	Runs       AgentRunner
	Git        git.Runner
	Workspaces *workspace.Manager
	Settings   SettingsSource
	SinkPath   func(taskID string) string
	Clock      clock.Clock
	Logger     zerolog.Logger
}

// NewEngine creates an Engine from its dependencies. A nil Clock defaults
// to the real clock.
func NewEngine(deps EngineDeps) *Engine {
	clk := deps.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &Engine{
		store:      deps.Store,
		runs:       deps.Runs,
		git:        deps.Git,
		workspaces: deps.Workspaces,
		settings:   deps.Settings,
		sinkPath:   deps.SinkPath,
		clk:        clk,
		logger:     deps.Logger,
	}
}

// Start begins work on a new task: it stores the prompt, clones the
// configured repository into a fresh private workspace, launches a
// streaming plan run and moves the task to streaming.
func (e *Engine) Start(ctx context.Context, id, prompt string) (*domain.Task, error) {
	t, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(t.Status, constants.TaskStatusStreaming) {
		return nil, conductorerrors.Wrapf(conductorerrors.ErrInvalidTransition,
			"task %s cannot start from status %s", t.ID, t.Status)
	}

	if prompt != "" {
		t.Prompt = prompt
	}
	if t.Prompt == "" {
		return nil, conductorerrors.Wrapf(conductorerrors.ErrEmptyPrompt, "task %s has no prompt", t.ID)
	}

	settings, err := e.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	if settings.RepoURL == "" {
		return nil, conductorerrors.Wrap(conductorerrors.ErrRepoNotConfigured, "set a repository URL before starting tasks")
	}

	workspaceDir, err := e.workspaces.Create(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	if err = e.git.Clone(ctx, settings.RepoURL, workspaceDir); err != nil {
		// Leave no orphan directory behind a failed clone.
		_ = e.workspaces.Remove(ctx, t.ID)

		return nil, err
	}

	t.WorkspacePath = workspaceDir

	if _, err = e.runs.Launch(ctx, agent.LaunchSpec{
		TaskID:          t.ID,
		Prompt:          t.Prompt,
		WorkspaceDir:    workspaceDir,
		Mode:            constants.RunModePlan,
		SkipPermissions: settings.SkipPermissions,
	}); err != nil {
		return nil, err
	}

	if err = ApplyTransition(t, constants.TaskStatusStreaming, "plan run launched", e.clk); err != nil {
		return nil, err
	}

	if err = e.store.Update(ctx, t); err != nil {
		return nil, err
	}

	e.logger.Info().Str("task_id", t.ID).Str("ticket", t.Ticket).Msg("task started")

	return t, nil
}

// Action launches a streaming action run against the task's existing
// workspace and moves the task to actioning.
func (e *Engine) Action(ctx context.Context, id string) (*domain.Task, error) {
	t, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(t.Status, constants.TaskStatusActioning) {
		return nil, conductorerrors.Wrapf(conductorerrors.ErrInvalidTransition,
			"task %s cannot action from status %s", t.ID, t.Status)
	}

	settings, err := e.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	if _, err = e.runs.Launch(ctx, agent.LaunchSpec{
		TaskID:          t.ID,
		Prompt:          t.Prompt,
		WorkspaceDir:    t.WorkspacePath,
		Mode:            constants.RunModeAction,
		SkipPermissions: settings.SkipPermissions,
	}); err != nil {
		return nil, err
	}

	if err = ApplyTransition(t, constants.TaskStatusActioning, "action run launched", e.clk); err != nil {
		return nil, err
	}

	if err = e.store.Update(ctx, t); err != nil {
		return nil, err
	}

	e.logger.Info().Str("task_id", t.ID).Msg("action run launched")

	return t, nil
}

// Finalize parses the task's sink in full, stores the extracted output and
// a fresh workspace diff, and moves the task to actioned.
func (e *Engine) Finalize(ctx context.Context, id string) (*domain.Task, error) {
	t, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(t.Status, constants.TaskStatusActioned) {
		return nil, conductorerrors.Wrapf(conductorerrors.ErrInvalidTransition,
			"task %s cannot finalize from status %s", t.ID, t.Status)
	}

	output, err := agent.ExtractOutput(e.sinkPath(t.ID))
	if err != nil {
		return nil, err
	}

	diff, err := e.git.DiffUnstaged(ctx, t.WorkspacePath)
	if err != nil {
		return nil, err
	}

	t.Output = output
	t.Diff = diff

	if err = ApplyTransition(t, constants.TaskStatusActioned, "output finalized", e.clk); err != nil {
		return nil, err
	}

	if err = e.store.Update(ctx, t); err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("task_id", t.ID).
		Int("output_bytes", len(output)).
		Int("diff_bytes", len(diff)).
		Msg("task finalized")

	return t, nil
}

// Followup runs the agent synchronously with a new prompt against an
// actioned task, appends its output and refreshes the diff. The task stays
// actioned so further follow-ups and push remain available.
func (e *Engine) Followup(ctx context.Context, id, prompt string) (*domain.Task, error) {
	if prompt == "" {
		return nil, conductorerrors.Wrap(conductorerrors.ErrEmptyPrompt, "follow-up prompt is required")
	}

	t, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if t.Status != constants.TaskStatusActioned {
		return nil, conductorerrors.Wrapf(conductorerrors.ErrInvalidTransition,
			"task %s cannot take a follow-up from status %s", t.ID, t.Status)
	}

	settings, err := e.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	output, err := e.runs.RunSync(ctx, agent.LaunchSpec{
		TaskID:          t.ID,
		Prompt:          prompt,
		WorkspaceDir:    t.WorkspacePath,
		Mode:            constants.RunModeAction,
		SkipPermissions: settings.SkipPermissions,
	})
	if err != nil {
		return nil, err
	}

	diff, err := e.git.DiffUnstaged(ctx, t.WorkspacePath)
	if err != nil {
		return nil, err
	}

	t.AppendOutput(followupSeparator, output)
	t.Diff = diff
	// Status stays actioned; the transition history records only real
	// status changes.
	t.UpdatedAt = e.clk.Now().UTC()

	if err = e.store.Update(ctx, t); err != nil {
		return nil, err
	}

	e.logger.Info().Str("task_id", t.ID).Msg("follow-up completed")

	return t, nil
}

// Push creates a branch named from the ticket and title, commits the
// workspace changes, pushes the branch and completes the task. It returns
// the updated task and the pushed branch name.
func (e *Engine) Push(ctx context.Context, id string) (*domain.Task, string, error) {
	t, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if !CanTransition(t.Status, constants.TaskStatusCompleted) {
		return nil, "", conductorerrors.Wrapf(conductorerrors.ErrInvalidTransition,
			"task %s cannot push from status %s", t.ID, t.Status)
	}

	branch, err := e.git.BranchCommitPush(ctx, t.WorkspacePath, t.Ticket, t.Title)
	if err != nil {
		return nil, "", err
	}

	if err = ApplyTransition(t, constants.TaskStatusCompleted, "branch pushed", e.clk); err != nil {
		return nil, "", err
	}

	if err = e.store.Update(ctx, t); err != nil {
		return nil, "", err
	}

	e.logger.Info().Str("task_id", t.ID).Str("branch", branch).Msg("task completed")

	return t, branch, nil
}

// Delete removes a task from any state, along with its workspace and any
// sink output on disk.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	t, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err = e.workspaces.Remove(ctx, t.ID); err != nil {
		return err
	}

	if err = os.RemoveAll(filepath.Dir(e.sinkPath(t.ID))); err != nil {
		return conductorerrors.Wrap(err, "failed to remove task output directory")
	}

	if err = e.store.Delete(ctx, t.ID); err != nil {
		return err
	}

	e.logger.Info().Str("task_id", t.ID).Str("ticket", t.Ticket).Msg("task deleted")

	return nil
}
