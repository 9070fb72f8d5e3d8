package api

import (
	"net/http"
	"strconv"

	"triggerd/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"platforms": s.snapshot.Platforms(),
	})
}

// handleDeliveries serves the operator journal: recent deliveries filtered by
// platform and outcome, newest first.
func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", false)
		return
	}
	if err := s.read.authorizeRead(r); err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials", false)
		return
	}

	q := store.Query{
		Platform: r.URL.Query().Get("platform"),
		Outcome:  store.Outcome(r.URL.Query().Get("outcome")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer", false)
			return
		}
		q.Limit = n
	}

	deliveries, err := s.journal.ListDeliveries(r.Context(), q)
	if err != nil {
		s.logger.Error(err, "journal query failed")
		writeError(w, http.StatusInternalServerError, "JOURNAL_UNAVAILABLE", "unable to query deliveries", true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deliveries": deliveries,
		"count":      len(deliveries),
	})
}
