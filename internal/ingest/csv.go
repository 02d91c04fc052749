// Package ingest imports tasks from CSV exports of an external tracker.
// Rows become new-status tasks; tickets already stored and rows assigned to
// people outside the configured assignee list are skipped.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/config"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/ctxutil"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// columns maps accepted header spellings onto canonical field names.
// Header matching is case-insensitive.
var columns = map[string]string{
	"ticket":   "ticket",
	"task":     "title",
	"title":    "title",
	"link":     "link",
	"url":      "link",
	"priority": "priority",
	"assign":   "assignee",
	"assignee": "assignee",
	"state":    "state",
	"status":   "state",
}

// TaskStore is the persistence surface the importer needs.
type TaskStore interface {
	Tickets(ctx context.Context) (map[string]struct{}, error)
	Create(ctx context.Context, tasks ...domain.Task) error
}

// SettingsSource loads the runtime settings holding the assignee filter.
type SettingsSource interface {
	Load(ctx context.Context) (*config.Settings, error)
}

// Result summarizes one import.
type Result struct {
	// Created is the number of tasks added to the store.
	Created int `json:"created"`

	// SkippedExisting counts rows whose ticket was already stored.
	SkippedExisting int `json:"skipped_existing"`

	// SkippedAssignee counts rows filtered out by the assignee list.
	SkippedAssignee int `json:"skipped_assignee"`
}

// Importer reads tracker CSV exports into the task store.
type Importer struct {
	store    TaskStore
	settings SettingsSource
	clk      clock.Clock
	logger   zerolog.Logger
}

// NewImporter creates an Importer. A nil clk defaults to the real clock.
func NewImporter(store TaskStore, settings SettingsSource, clk clock.Clock, logger zerolog.Logger) *Importer {
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &Importer{store: store, settings: settings, clk: clk, logger: logger}
}

// Import parses CSV from r and stores one new task per accepted row.
// The header row is required and must include ticket and title columns.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Tracker exports pad short rows; tolerate ragged records.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, conductorerrors.Wrap(conductorerrors.ErrBadCSV, "missing header row")
	}

	fields, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	existing, err := i.store.Tickets(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := i.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	now := i.clk.Now().UTC()

	var created []domain.Task

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, conductorerrors.Wrap(conductorerrors.ErrBadCSV, err.Error())
		}

		task, ok := i.rowToTask(fields, row, now)
		if !ok {
			continue
		}

		if _, dup := existing[task.Ticket]; dup {
			result.SkippedExisting++

			continue
		}

		if !assigneeAllowed(settings.Assignees, task.Assignee) {
			result.SkippedAssignee++

			continue
		}

		existing[task.Ticket] = struct{}{}
		created = append(created, task)
	}

	if len(created) > 0 {
		if err = i.store.Create(ctx, created...); err != nil {
			return nil, err
		}
	}

	result.Created = len(created)

	i.logger.Info().
		Int("created", result.Created).
		Int("skipped_existing", result.SkippedExisting).
		Int("skipped_assignee", result.SkippedAssignee).
		Msg("CSV import finished")

	return result, nil
}

// mapHeader resolves column indexes for the canonical fields.
func mapHeader(header []string) (map[string]int, error) {
	fields := make(map[string]int, len(columns))
	for idx, name := range header {
		canonical, ok := columns[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, seen := fields[canonical]; !seen {
			fields[canonical] = idx
		}
	}

	if _, ok := fields["ticket"]; !ok {
		return nil, conductorerrors.Wrap(conductorerrors.ErrBadCSV, "header has no ticket column")
	}
	if _, ok := fields["title"]; !ok {
		return nil, conductorerrors.Wrap(conductorerrors.ErrBadCSV, "header has no task/title column")
	}

	return fields, nil
}

// rowToTask builds a task from one CSV row. Rows with an empty ticket or
// title are dropped.
func (i *Importer) rowToTask(fields map[string]int, row []string, now time.Time) (domain.Task, bool) {
	cell := func(field string) string {
		idx, ok := fields[field]
		if !ok || idx >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[idx])
	}

	ticket := cell("ticket")
	title := cell("title")
	if ticket == "" || title == "" {
		return domain.Task{}, false
	}

	state := cell("state")
	if state == "" {
		state = "Ready"
	}

	return domain.Task{
		ID:            uuid.New().String(),
		Ticket:        ticket,
		Title:         title,
		Link:          cell("link"),
		Priority:      constants.NormalizePriority(cell("priority")),
		Assignee:      cell("assignee"),
		State:         state,
		Status:        constants.TaskStatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: constants.TaskSchemaVersion,
	}, true
}

func assigneeAllowed(allowed []string, assignee string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(a), assignee) {
			return true
		}
	}

	return false
}
