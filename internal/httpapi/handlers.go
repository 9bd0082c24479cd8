// Package httpapi exposes the read-side of the scoring pipeline over
// HTTP: latest snapshot, history, condition gate checks and an endpoint
// to trigger a scoring cycle.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/macrointel/macrointel/internal/persistence"
	"github.com/macrointel/macrointel/internal/pipeline"
)

// Handler carries the API's collaborators.
type Handler struct {
	pipeline *pipeline.Pipeline
	logger   zerolog.Logger
}

// NewHandler builds the API handler set.
func NewHandler(p *pipeline.Pipeline, logger zerolog.Logger) *Handler {
	return &Handler{
		pipeline: p,
		logger:   logger.With().Str("component", "httpapi").Logger(),
	}
}

// Latest serves the most recent snapshot.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.pipeline.Latest(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to load latest snapshot")
		return
	}
	if snapshot == nil {
		h.writeError(w, http.StatusNotFound, "no snapshot available yet")
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

// History serves stored snapshots from the last N hours (default 24).
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = parsed
	}

	now := time.Now().UTC()
	snapshots, err := h.pipeline.History(r.Context(), persistence.TimeRange{
		From: now.Add(-time.Duration(hours) * time.Hour),
		To:   now,
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to load snapshot history")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"hours":     hours,
		"count":     len(snapshots),
		"snapshots": snapshots,
	})
}

// Score triggers one scoring cycle and returns the snapshot plus the
// playbook report.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	snapshot, report, err := h.pipeline.RunCycle(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("scoring cycle failed")
		h.writeError(w, http.StatusServiceUnavailable, "scoring cycle failed: no readings available")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": snapshot,
		"report":   report,
	})
}

// Report runs one scoring cycle and returns only the playbook report.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	_, report, err := h.pipeline.RunCycle(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("scoring cycle failed")
		h.writeError(w, http.StatusServiceUnavailable, "scoring cycle failed: no readings available")
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// Query evaluates a condition against the latest snapshot. The result
// is always a definite boolean.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	condition := r.URL.Query().Get("condition")
	if condition == "" {
		h.writeError(w, http.StatusBadRequest, "condition query parameter is required")
		return
	}

	result := h.pipeline.CheckCondition(r.Context(), condition)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"condition": condition,
		"result":    result,
	})
}

// Strategies lists the rule table the process is running with.
func (h *Handler) Strategies(w http.ResponseWriter, r *http.Request) {
	table := h.pipeline.Table()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":    table.Version,
		"strategies": table.Names(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
