package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/config"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

type fakeStore struct {
	tickets map[string]struct{}
	created []domain.Task
}

func (s *fakeStore) Tickets(_ context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(s.tickets))
	for k := range s.tickets {
		out[k] = struct{}{}
	}

	return out, nil
}

func (s *fakeStore) Create(_ context.Context, tasks ...domain.Task) error {
	s.created = append(s.created, tasks...)

	return nil
}

type fixedSettings struct {
	settings config.Settings
}

func (s *fixedSettings) Load(_ context.Context) (*config.Settings, error) {
	cp := s.settings

	return &cp, nil
}

func newImporter(store *fakeStore, settings config.Settings) *Importer {
	return NewImporter(
		store,
		&fixedSettings{settings: settings},
		clock.Fixed{T: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		zerolog.Nop(),
	)
}

func TestImporterImport(t *testing.T) {
	ctx := context.Background()

	t.Run("creates tasks from well-formed rows", func(t *testing.T) {
		store := &fakeStore{}
		imp := newImporter(store, config.Settings{})

		csvData := `Ticket,Task,Link,Priority,Assignee,State
PROJ-1,Fix login bug,https://tracker/PROJ-1,High,alice,Ready
PROJ-2,Tidy docs,,low,bob,
`

		result, err := imp.Import(ctx, strings.NewReader(csvData))
		require.NoError(t, err)

		assert.Equal(t, 2, result.Created)
		require.Len(t, store.created, 2)

		first := store.created[0]
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, "PROJ-1", first.Ticket)
		assert.Equal(t, "Fix login bug", first.Title)
		assert.Equal(t, "https://tracker/PROJ-1", first.Link)
		assert.Equal(t, constants.PriorityHigh, first.Priority)
		assert.Equal(t, "alice", first.Assignee)
		assert.Equal(t, "Ready", first.State)
		assert.Equal(t, constants.TaskStatusNew, first.Status)

		second := store.created[1]
		assert.Equal(t, constants.PriorityLow, second.Priority)
		assert.Equal(t, "Ready", second.State, "empty state defaults to Ready")
	})

	t.Run("header matching is case-insensitive with aliases", func(t *testing.T) {
		store := &fakeStore{}
		imp := newImporter(store, config.Settings{})

		csvData := "TICKET,title,url,PRIORITY,assign,status\nPROJ-1,Do thing,https://x,medium,alice,Open\n"

		result, err := imp.Import(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		require.Equal(t, 1, result.Created)

		task := store.created[0]
		assert.Equal(t, "https://x", task.Link)
		assert.Equal(t, "Open", task.State)
	})

	t.Run("existing tickets are skipped", func(t *testing.T) {
		store := &fakeStore{tickets: map[string]struct{}{"PROJ-1": {}}}
		imp := newImporter(store, config.Settings{})

		csvData := "Ticket,Task\nPROJ-1,Already here\nPROJ-2,New one\n"

		result, err := imp.Import(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.SkippedExisting)
	})

	t.Run("duplicate tickets within one file are collapsed", func(t *testing.T) {
		store := &fakeStore{}
		imp := newImporter(store, config.Settings{})

		csvData := "Ticket,Task\nPROJ-1,First\nPROJ-1,Second\n"

		result, err := imp.Import(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.SkippedExisting)
		assert.Equal(t, "First", store.created[0].Title)
	})

	t.Run("assignee filter skips rows for other people", func(t *testing.T) {
		store := &fakeStore{}
		imp := newImporter(store, config.Settings{Assignees: []string{"Alice"}})

		csvData := "Ticket,Task,Assignee\nPROJ-1,Mine,alice\nPROJ-2,Theirs,bob\n"

		result, err := imp.Import(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.SkippedAssignee)
		assert.Equal(t, "PROJ-1", store.created[0].Ticket)
	})

	t.Run("rows missing ticket or title are dropped", func(t *testing.T) {
		store := &fakeStore{}
		imp := newImporter(store, config.Settings{})

		csvData := "Ticket,Task\n,No ticket\nPROJ-2,\nPROJ-3,Kept\n"

		result, err := imp.Import(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, "PROJ-3", store.created[0].Ticket)
	})

	t.Run("short rows are tolerated", func(t *testing.T) {
		store := &fakeStore{}
		imp := newImporter(store, config.Settings{})

		csvData := "Ticket,Task,Link,Priority\nPROJ-1,Short row\n"

		result, err := imp.Import(ctx, strings.NewReader(csvData))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Empty(t, store.created[0].Link)
		assert.Equal(t, constants.PriorityMedium, store.created[0].Priority)
	})

	t.Run("missing required columns fail with ErrBadCSV", func(t *testing.T) {
		imp := newImporter(&fakeStore{}, config.Settings{})

		_, err := imp.Import(ctx, strings.NewReader("Link,Priority\nhttps://x,High\n"))
		require.ErrorIs(t, err, conductorerrors.ErrBadCSV)
	})

	t.Run("empty input fails with ErrBadCSV", func(t *testing.T) {
		imp := newImporter(&fakeStore{}, config.Settings{})

		_, err := imp.Import(ctx, strings.NewReader(""))
		require.ErrorIs(t, err, conductorerrors.ErrBadCSV)
	})
}
