package server

import (
	"encoding/json"
	"errors"
	"net/http"

	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// errorResponse is the JSON body for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response")
	}
}

// respondError maps domain errors onto HTTP statuses. Guard violations and
// run conflicts are 409s so clients can distinguish "illegal right now"
// from "malformed request".
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, conductorerrors.ErrTaskNotFound),
		errors.Is(err, conductorerrors.ErrSinkNotFound):
		status = http.StatusNotFound
	case errors.Is(err, conductorerrors.ErrInvalidTransition),
		errors.Is(err, conductorerrors.ErrRunActive):
		status = http.StatusConflict
	case errors.Is(err, conductorerrors.ErrEmptyPrompt),
		errors.Is(err, conductorerrors.ErrEmptyValue),
		errors.Is(err, conductorerrors.ErrBadCSV),
		errors.Is(err, conductorerrors.ErrRepoNotConfigured):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}

	s.respondJSON(w, status, errorResponse{Error: err.Error()})
}
