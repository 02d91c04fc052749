package agent

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/ctxutil"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// LaunchSpec describes one agent run to start.
type LaunchSpec struct {
	// TaskID identifies the task the run belongs to.
	TaskID string

	// Prompt is the instruction passed to the agent. Must be non-empty.
	Prompt string

	// WorkspaceDir is the working directory for the agent process. Must
	// exist on disk before launch.
	WorkspaceDir string

	// Mode selects plan or action behavior.
	Mode constants.RunMode

	// SkipPermissions passes the agent's permission-bypass flag.
	SkipPermissions bool
}

// Run is the record of one live or finished agent process.
type Run struct {
	// TaskID is the owning task.
	TaskID string

	// Mode is the run mode the process was launched with.
	Mode constants.RunMode

	// SinkPath is the file receiving the process's streamed output.
	SinkPath string

	// StartedAt is when the process was launched.
	StartedAt time.Time

	cmd  *exec.Cmd
	done chan struct{}

	mu       sync.Mutex
	exitCode int
	exitErr  string
}

// Done returns a channel closed once the process has exited and the sink
// file has been closed.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Exit returns the process exit code and any associated wait error text.
// Valid only after Done is closed.
func (r *Run) Exit() (int, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.exitCode, r.exitErr
}

// Supervisor launches agent processes and tracks at most one live run per
// task. It owns the sink lifecycle for streamed runs: the monitor goroutine
// closes the sink when the process exits, and nothing else.
type Supervisor struct {
	binary   string
	sinkPath func(taskID string) string
	timeout  time.Duration
	clk      clock.Clock
	logger   zerolog.Logger

	mu   sync.Mutex
	live map[string]*Run
}

// SupervisorOption customizes a Supervisor.
type SupervisorOption func(*Supervisor)

// WithClock overrides the supervisor's time source.
func WithClock(clk clock.Clock) SupervisorOption {
	return func(s *Supervisor) {
		s.clk = clk
	}
}

// WithSyncTimeout bounds RunSync invocations.
func WithSyncTimeout(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.timeout = d
	}
}

// NewSupervisor creates a Supervisor running the given agent binary and
// resolving task sink files through sinkPath.
func NewSupervisor(binary string, sinkPath func(taskID string) string, logger zerolog.Logger, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		binary:   binary,
		sinkPath: sinkPath,
		timeout:  constants.DefaultAgentTimeout,
		clk:      clock.RealClock{},
		logger:   logger,
		live:     make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// LiveRun returns the live run for taskID, if any. A launch still in
// flight holds the slot but has no run yet; only started runs are
// reported, and the returned run is always non-nil when ok is true.
func (s *Supervisor) LiveRun(taskID string) (*Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.live[taskID]
	if run == nil {
		return nil, false
	}

	return run, ok
}

// Launch starts an agent process for spec with its stdout wired to a fresh
// sink file, and returns once the process has started. A monitor goroutine
// waits for exit, closes the sink and records the exit code; it never
// touches task state. At most one live run may exist per task. ctx guards
// only the pre-launch checks: once started, the process runs to completion
// regardless of the caller's context.
func (s *Supervisor) Launch(ctx context.Context, spec LaunchSpec) (*Run, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := s.validateSpec(spec); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, ok := s.live[spec.TaskID]; ok {
		s.mu.Unlock()

		return nil, conductorerrors.Wrapf(conductorerrors.ErrRunActive, "task %s already has a live run", spec.TaskID)
	}
	// Reserve the slot before the slow launch path so concurrent callers
	// fail fast instead of racing to start two processes.
	s.live[spec.TaskID] = nil
	s.mu.Unlock()

	run, err := s.startStreaming(spec)
	if err != nil {
		s.release(spec.TaskID)

		return nil, err
	}

	s.mu.Lock()
	s.live[spec.TaskID] = run
	s.mu.Unlock()

	return run, nil
}

func (s *Supervisor) startStreaming(spec LaunchSpec) (*Run, error) {
	sinkPath := s.sinkPath(spec.TaskID)

	sink, err := CreateSink(sinkPath)
	if err != nil {
		return nil, err
	}

	args := []string{"-p", spec.Prompt, "--output-format", "stream-json", "--verbose"}
	if spec.Mode == constants.RunModePlan {
		args = append(args, "--permission-mode", "plan")
	}
	if spec.SkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}

	var stderr bytes.Buffer

	// The process must outlive the request that launched it, so it is
	// never bound to the caller's context.
	cmd := exec.Command(s.binary, args...) //nolint:gosec // binary comes from validated config
	cmd.Dir = spec.WorkspaceDir
	cmd.Stdout = sink
	cmd.Stderr = &stderr

	if err = cmd.Start(); err != nil {
		_ = sink.Close()

		return nil, conductorerrors.Wrapf(conductorerrors.ErrLaunchFailed, "failed to start %s: %v", s.binary, err)
	}

	run := &Run{
		TaskID:    spec.TaskID,
		Mode:      spec.Mode,
		SinkPath:  sinkPath,
		StartedAt: s.clk.Now(),
		cmd:       cmd,
		done:      make(chan struct{}),
	}

	s.logger.Info().
		Str("task_id", spec.TaskID).
		Str("mode", string(spec.Mode)).
		Int("pid", cmd.Process.Pid).
		Msg("agent process started")

	go s.monitor(run, sink, &stderr)

	return run, nil
}

// monitor waits for the process, closes the sink, records the exit and
// releases the task's live-run slot. Every exit path runs the cleanup.
func (s *Supervisor) monitor(run *Run, sink *os.File, stderr *bytes.Buffer) {
	defer close(run.done)
	defer s.release(run.TaskID)
	defer func() {
		if err := sink.Close(); err != nil {
			s.logger.Warn().Err(err).Str("task_id", run.TaskID).Msg("failed to close sink file")
		}
	}()

	err := run.cmd.Wait()

	code := 0
	errText := ""
	if err != nil {
		code = -1
		errText = err.Error()

		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
	}

	run.mu.Lock()
	run.exitCode = code
	run.exitErr = errText
	run.mu.Unlock()

	event := s.logger.Info()
	if code != 0 {
		event = s.logger.Warn().Str("stderr", truncate(stderr.String(), 2048))
	}
	event.
		Str("task_id", run.TaskID).
		Int("exit_code", code).
		Msg("agent process exited")
}

// RunSync executes the agent synchronously with plain-text output and
// returns whatever it produced. A non-zero exit is reported in the returned
// output rather than as an error, so callers can record the failure text on
// the task. It holds the task's live-run slot for its duration.
func (s *Supervisor) RunSync(ctx context.Context, spec LaunchSpec) (string, error) {
	if err := s.validateSpec(spec); err != nil {
		return "", err
	}

	s.mu.Lock()
	if _, ok := s.live[spec.TaskID]; ok {
		s.mu.Unlock()

		return "", conductorerrors.Wrapf(conductorerrors.ErrRunActive, "task %s already has a live run", spec.TaskID)
	}
	s.live[spec.TaskID] = nil
	s.mu.Unlock()
	defer s.release(spec.TaskID)

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{"-p", spec.Prompt, "--output-format", "text"}
	if spec.SkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(runCtx, s.binary, args...) //nolint:gosec // binary comes from validated config
	cmd.Dir = spec.WorkspaceDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if startErr := runCtx.Err(); startErr != nil {
			return "", conductorerrors.Wrapf(conductorerrors.ErrLaunchFailed, "agent run interrupted: %v", startErr)
		}

		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			s.logger.Warn().
				Str("task_id", spec.TaskID).
				Int("exit_code", exitErr.ExitCode()).
				Msg("synchronous agent run failed")

			return fmt.Sprintf("agent run failed (exit %d): %s", exitErr.ExitCode(), stderr.String()), nil
		}

		return "", conductorerrors.Wrapf(conductorerrors.ErrLaunchFailed, "failed to run %s: %v", s.binary, err)
	}

	return stdout.String(), nil
}

func (s *Supervisor) validateSpec(spec LaunchSpec) error {
	if spec.TaskID == "" {
		return conductorerrors.Wrap(conductorerrors.ErrEmptyValue, "task ID is required")
	}
	if spec.Prompt == "" {
		return conductorerrors.Wrapf(conductorerrors.ErrEmptyPrompt, "task %s has no prompt", spec.TaskID)
	}

	info, err := os.Stat(spec.WorkspaceDir)
	if err != nil || !info.IsDir() {
		return conductorerrors.Wrapf(conductorerrors.ErrWorkspaceMissing, "workspace %s does not exist", spec.WorkspaceDir)
	}

	return nil
}

func (s *Supervisor) release(taskID string) {
	s.mu.Lock()
	delete(s.live, taskID)
	s.mu.Unlock()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
