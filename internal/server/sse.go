package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleStream serves the live tail of a task's sink as server-sent events:
// one event per decoded record carrying the raw sink line, an "error" event
// for a terminal failure (sink never appeared), and an "end" event once the
// task leaves the in-progress statuses.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)

		return
	}

	taskID := chi.URLParam(r, "taskID")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := s.streamer.Subscribe(r.Context(), taskID)

	for ev := range events {
		if ev.Err != nil {
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", ev.Err.Error())
			flusher.Flush()

			return
		}

		fmt.Fprintf(w, "data: %s\n\n", ev.Record.Raw)
		flusher.Flush()
	}

	// Channel closed: the run is over (or the client went away).
	if r.Context().Err() == nil {
		fmt.Fprint(w, "event: end\ndata: stream closed\n\n")
		flusher.Flush()
	}

	s.logger.Debug().Str("task_id", taskID).Msg("tail stream ended")
}
