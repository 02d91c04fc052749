package agent

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/conductor/internal/constants"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// Cursor reads a sink file incrementally by byte offset. Each call to
// ReadNew returns the records decoded from lines that became fully
// terminated since the previous call; a trailing partial line is left for
// the next call.
type Cursor struct {
	path   string
	offset int64
}

// NewCursor returns a cursor positioned at the start of the sink at path.
func NewCursor(path string) *Cursor {
	return &Cursor{path: path}
}

// Offset returns the cursor's current byte offset.
func (c *Cursor) Offset() int64 {
	return c.offset
}

// ReadNew decodes all newly terminated lines past the cursor's offset. A
// missing file yields no records and no error so pollers tolerate the gap
// between launch and first write.
func (c *Cursor) ReadNew() ([]Record, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, conductorerrors.Wrap(err, "failed to open sink file")
	}
	defer func() { _ = f.Close() }()

	if _, err = f.Seek(c.offset, io.SeekStart); err != nil {
		return nil, conductorerrors.Wrap(err, "failed to seek sink file")
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, conductorerrors.Wrap(err, "failed to read sink file")
	}

	var records []Record
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			// Partial line: leave it for the next scan.
			break
		}

		line := data[:idx]
		data = data[idx+1:]
		c.offset += int64(idx + 1)

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		records = append(records, DecodeLine(string(line)))
	}

	return records, nil
}

// Event is one tail delivery: either a decoded record or a terminal error.
// The channel is closed after an error event.
type Event struct {
	Record Record
	Err    error
}

// StatusLoader reports a task's current status so the tail loop can tell
// when a quiet sink means the run is over rather than merely idle.
type StatusLoader interface {
	Status(ctx context.Context, taskID string) (constants.TaskStatus, error)
}

// Tailer streams sink records to subscribers as they are written.
type Tailer struct {
	sinkPath func(taskID string) string
	status   StatusLoader
	poll     time.Duration
	sinkWait time.Duration
	logger   zerolog.Logger
}

// TailerOption customizes a Tailer.
type TailerOption func(*Tailer)

// WithPollInterval overrides the sink scan cadence.
func WithPollInterval(d time.Duration) TailerOption {
	return func(t *Tailer) {
		t.poll = d
	}
}

// WithSinkWait overrides how long a subscription waits for the sink file to
// appear before giving up.
func WithSinkWait(d time.Duration) TailerOption {
	return func(t *Tailer) {
		t.sinkWait = d
	}
}

// NewTailer creates a Tailer resolving sinks through sinkPath and checking
// run liveness through status.
func NewTailer(sinkPath func(taskID string) string, status StatusLoader, logger zerolog.Logger, opts ...TailerOption) *Tailer {
	t := &Tailer{
		sinkPath: sinkPath,
		status:   status,
		poll:     constants.TailPollInterval,
		sinkWait: constants.SinkWaitTimeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Subscribe starts a tail of taskID's sink and returns the event channel.
// Every record appended to the sink is delivered exactly once, in order.
// The channel closes when the task leaves an in-progress status (after a
// final drain of the sink), when ctx is canceled, or after a terminal
// ErrSinkNotFound event if the sink never appears.
func (t *Tailer) Subscribe(ctx context.Context, taskID string) <-chan Event {
	events := make(chan Event, constants.TailBufferSize)

	go t.run(ctx, taskID, events)

	return events
}

func (t *Tailer) run(ctx context.Context, taskID string, events chan<- Event) {
	defer close(events)

	path := t.sinkPath(taskID)

	if !t.awaitSink(ctx, taskID, path) {
		if ctx.Err() != nil {
			return
		}

		t.send(ctx, events, Event{Err: conductorerrors.Wrapf(conductorerrors.ErrSinkNotFound, "no output produced for task %s", taskID)})

		return
	}

	cursor := NewCursor(path)
	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	for {
		records, err := cursor.ReadNew()
		if err != nil {
			t.logger.Warn().Err(err).Str("task_id", taskID).Msg("sink scan failed")
		}

		for _, rec := range records {
			if !t.send(ctx, events, Event{Record: rec}) {
				return
			}
		}

		// The sink is always scanned before the status check, so a record
		// written just before the process exited is delivered before the
		// idle turn that observes the finished run.
		if len(records) == 0 && !t.taskInProgress(ctx, taskID) {
			t.drain(ctx, cursor, taskID, events)

			t.logger.Debug().
				Str("task_id", taskID).
				Int64("offset", cursor.Offset()).
				Msg("tail ended")

			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// awaitSink polls for the sink file until it appears, the wait budget is
// spent, or ctx is canceled.
func (t *Tailer) awaitSink(ctx context.Context, taskID, path string) bool {
	if SinkExists(path) {
		return true
	}

	deadline := time.Now().Add(t.sinkWait)
	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if SinkExists(path) {
				return true
			}
			if time.Now().After(deadline) {
				t.logger.Warn().Str("task_id", taskID).Dur("waited", t.sinkWait).Msg("sink file never appeared")

				return false
			}
		}
	}
}

func (t *Tailer) taskInProgress(ctx context.Context, taskID string) bool {
	status, err := t.status.Status(ctx, taskID)
	if err != nil {
		// Task gone (deleted mid-stream) or store unavailable: stop tailing.
		t.logger.Debug().Err(err).Str("task_id", taskID).Msg("status check failed, ending tail")

		return false
	}

	return status.InProgress()
}

// drain performs one last scan so records written between the final scan
// and the status flip are still delivered before the channel closes.
func (t *Tailer) drain(ctx context.Context, cursor *Cursor, taskID string, events chan<- Event) {
	records, err := cursor.ReadNew()
	if err != nil {
		t.logger.Warn().Err(err).Str("task_id", taskID).Msg("final sink scan failed")

		return
	}

	for _, rec := range records {
		if !t.send(ctx, events, Event{Record: rec}) {
			return
		}
	}
}

func (t *Tailer) send(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}
