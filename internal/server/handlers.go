package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mrz1836/conductor/internal/config"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// promptRequest carries the prompt for start, follow-up and prompt updates.
type promptRequest struct {
	Prompt string `json:"prompt"`
}

// pushResponse reports the branch a completed task was pushed to.
type pushResponse struct {
	Task   any    `json:"task"`
	Branch string `json:"branch"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context())
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()

	result, err := s.importer.Import(r.Context(), r.Body)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, conductorerrors.Wrap(conductorerrors.ErrEmptyValue, "invalid JSON body"))

		return
	}

	t, err := s.tasks.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		s.respondError(w, err)

		return
	}

	t.Prompt = req.Prompt
	if err = s.tasks.Update(r.Context(), t); err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	// Body is optional: an empty body starts with the stored prompt.
	_ = json.NewDecoder(r.Body).Decode(&req)

	t, err := s.engine.Start(r.Context(), chi.URLParam(r, "taskID"), req.Prompt)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	t, err := s.engine.Action(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	t, err := s.engine.Finalize(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleFollowup(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, conductorerrors.Wrap(conductorerrors.ErrEmptyPrompt, "invalid JSON body"))

		return
	}

	t, err := s.engine.Followup(r.Context(), chi.URLParam(r, "taskID"), req.Prompt)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	t, branch, err := s.engine.Push(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, pushResponse{Task: t, Branch: branch})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Delete(r.Context(), chi.URLParam(r, "taskID")); err != nil {
		s.respondError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Load(r.Context())
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var settings struct {
		RepoURL         string   `json:"repo_url"`
		Assignees       []string `json:"assignees"`
		SkipPermissions bool     `json:"skip_permissions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.respondError(w, conductorerrors.Wrap(conductorerrors.ErrEmptyValue, "invalid JSON body"))

		return
	}

	updated := &config.Settings{
		RepoURL:         settings.RepoURL,
		Assignees:       settings.Assignees,
		SkipPermissions: settings.SkipPermissions,
	}
	if err := s.settings.Save(r.Context(), updated); err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}
