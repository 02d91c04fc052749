package task

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/ctxutil"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/flock"
)

const (
	lockTimeout  = 5 * time.Second
	lockInterval = 50 * time.Millisecond
)

// FileStore persists all tasks as a single JSON array on disk. Writes hold
// an in-process mutex plus an exclusive file lock so the HTTP server and
// the CLI importer never interleave. Reads go straight to disk so every
// caller sees the latest persisted state.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the tasks file at path. The file
// is created on first write; a missing file reads as an empty task list.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// List returns all tasks ordered by priority rank, then creation time.
func (s *FileStore) List(ctx context.Context) ([]domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	tasks, err := s.load()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		pi, pj := tasks[i].Priority.SortOrder(), tasks[j].Priority.SortOrder()
		if pi != pj {
			return pi < pj
		}

		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// Get returns the task with the given ID.
func (s *FileStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	tasks, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}

	return nil, conductorerrors.Wrapf(conductorerrors.ErrTaskNotFound, "task %s", id)
}

// Status returns the current status of the task with the given ID. It
// satisfies the tail stream's status loader.
func (s *FileStore) Status(ctx context.Context, id string) (constants.TaskStatus, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	return t.Status, nil
}

// Create appends new tasks, rejecting duplicates by ID or ticket.
func (s *FileStore) Create(ctx context.Context, newTasks ...domain.Task) error {
	if len(newTasks) == 0 {
		return nil
	}

	return s.mutate(ctx, func(tasks []domain.Task) ([]domain.Task, error) {
		seen := make(map[string]struct{}, len(tasks))
		for _, t := range tasks {
			seen[t.ID] = struct{}{}
			if t.Ticket != "" {
				seen["ticket:"+t.Ticket] = struct{}{}
			}
		}

		for _, t := range newTasks {
			if _, dup := seen[t.ID]; dup {
				return nil, conductorerrors.Wrapf(conductorerrors.ErrTaskExists, "task %s", t.ID)
			}
			if t.Ticket != "" {
				if _, dup := seen["ticket:"+t.Ticket]; dup {
					return nil, conductorerrors.Wrapf(conductorerrors.ErrTaskExists, "ticket %s", t.Ticket)
				}
				seen["ticket:"+t.Ticket] = struct{}{}
			}
			seen[t.ID] = struct{}{}
			tasks = append(tasks, t)
		}

		return tasks, nil
	})
}

// Update replaces the stored task with the same ID.
func (s *FileStore) Update(ctx context.Context, updated *domain.Task) error {
	return s.mutate(ctx, func(tasks []domain.Task) ([]domain.Task, error) {
		for i := range tasks {
			if tasks[i].ID == updated.ID {
				tasks[i] = *updated

				return tasks, nil
			}
		}

		return nil, conductorerrors.Wrapf(conductorerrors.ErrTaskNotFound, "task %s", updated.ID)
	})
}

// Delete removes the task with the given ID.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(tasks []domain.Task) ([]domain.Task, error) {
		for i := range tasks {
			if tasks[i].ID == id {
				return append(tasks[:i], tasks[i+1:]...), nil
			}
		}

		return nil, conductorerrors.Wrapf(conductorerrors.ErrTaskNotFound, "task %s", id)
	})
}

// Tickets returns the set of ticket references already stored, for import
// deduplication.
func (s *FileStore) Tickets(ctx context.Context) (map[string]struct{}, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	tasks, err := s.load()
	if err != nil {
		return nil, err
	}

	tickets := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if t.Ticket != "" {
			tickets[t.Ticket] = struct{}{}
		}
	}

	return tickets, nil
}

// mutate runs fn over the current task list under both locks and persists
// the result atomically.
func (s *FileStore) mutate(ctx context.Context, fn func([]domain.Task) ([]domain.Task, error)) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.acquireFileLock(ctx)
	if err != nil {
		return err
	}
	defer release()

	tasks, err := s.load()
	if err != nil {
		return err
	}

	tasks, err = fn(tasks)
	if err != nil {
		return err
	}

	return s.save(tasks)
}

func (s *FileStore) load() ([]domain.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, conductorerrors.Wrap(err, "failed to read tasks file")
	}

	if len(data) == 0 {
		return nil, nil
	}

	var tasks []domain.Task
	if err = json.Unmarshal(data, &tasks); err != nil {
		return nil, conductorerrors.Wrapf(err, "tasks file %s is corrupted", s.path)
	}

	return tasks, nil
}

func (s *FileStore) save(tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return conductorerrors.Wrap(err, "failed to encode tasks")
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return conductorerrors.Wrap(err, "failed to create data directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tasks-*.json")
	if err != nil {
		return conductorerrors.Wrap(err, "failed to create temp tasks file")
	}

	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return conductorerrors.Wrap(err, "failed to write tasks file")
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return conductorerrors.Wrap(err, "failed to close temp tasks file")
	}

	if err = os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)

		return conductorerrors.Wrap(err, "failed to replace tasks file")
	}

	return nil
}

// acquireFileLock takes the cross-process lock guarding the tasks file,
// retrying until the timeout elapses.
func (s *FileStore) acquireFileLock(ctx context.Context) (func(), error) {
	lockPath := s.path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0750); err != nil {
		return nil, conductorerrors.Wrap(err, "failed to create data directory")
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600) //nolint:gosec // lock file path derives from config
	if err != nil {
		return nil, conductorerrors.Wrap(err, "failed to open tasks lock file")
	}

	deadline := time.Now().Add(lockTimeout)
	for {
		if err = flock.Exclusive(f.Fd()); err == nil {
			return func() {
				_ = flock.Unlock(f.Fd())
				_ = f.Close()
			}, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()

			return nil, conductorerrors.Wrapf(conductorerrors.ErrLockTimeout, "tasks file locked for over %s", lockTimeout)
		}

		select {
		case <-ctx.Done():
			_ = f.Close()

			return nil, ctx.Err()
		case <-time.After(lockInterval):
		}
	}
}
