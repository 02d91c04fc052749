// Package constants provides shared constants for the conductor task service.
// This file defines default values and well-known file names.
package constants

import "time"

// ConductorHome is the default home directory name (relative to $HOME).
const ConductorHome = ".conductor"

// Well-known directory and file names under the data directory.
const (
	// TasksFileName is the task record file (a JSON array of tasks).
	TasksFileName = "tasks.json"

	// WorkspacesDir holds one private repository clone per task.
	WorkspacesDir = "workspaces"

	// OutputsDir holds one sink directory per task.
	OutputsDir = "outputs"

	// SinkFileName is the agent output sink inside a task's output directory.
	SinkFileName = "agent_output.jsonl"

	// LogsDir holds the rotating service log.
	LogsDir = "logs"

	// LogFileName is the rotating service log file.
	LogFileName = "conductor.log"
)

// AgentBinary is the default external agent CLI invoked per run.
const AgentBinary = "claude"

// Agent run defaults.
const (
	// DefaultAgentTimeout bounds a synchronous (non-streaming) agent run.
	DefaultAgentTimeout = 30 * time.Minute

	// TailPollInterval is the delay between sink scans when no new data
	// was found. The sink is a plain file with no change notification.
	TailPollInterval = 100 * time.Millisecond

	// SinkWaitTimeout bounds how long a tail subscriber waits for the sink
	// file to appear before emitting a terminal "no output" event.
	SinkWaitTimeout = 30 * time.Second

	// TailBufferSize is the channel capacity for tail event delivery.
	TailBufferSize = 64
)

// Server defaults.
const (
	// DefaultListenAddr is the default HTTP listen address.
	DefaultListenAddr = ":9000"

	// ServerShutdownTimeout bounds graceful HTTP shutdown.
	ServerShutdownTimeout = 10 * time.Second
)

// Log rotation settings.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 30
	LogCompress   = true
)

// TaskSchemaVersion is the current version of the persisted Task schema.
const TaskSchemaVersion = 1

// BranchTitleWords is how many words of the task title participate in the
// derived branch name.
const BranchTitleWords = 3
