package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
)

type processRequest struct {
	JobID string `json:"jobId"`
}

// ProcessOne triggers processing of a single job: the one named in the body,
// or the head of the queue when the body carries no id.
func (a *App) ProcessOne(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	outcome, err := a.Runner.ProcessOne(r.Context(), req.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrNoQueuedJobs) {
			a.json(w, http.StatusOK, map[string]string{"message": "No jobs in queue"})
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: process failed")
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	if outcome.Status == domain.JobStatusError {
		a.json(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"jobId":   outcome.JobID,
			"type":    outcome.Type,
			"error":   outcome.Error,
		})
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"success":   true,
		"jobId":     outcome.JobID,
		"type":      outcome.Type,
		"outputUrl": outcome.OutputURL,
	})
}

// ProcessBatch drains the queue head, bounded by the runner's batch cap.
func (a *App) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	result := a.Runner.ProcessBatch(r.Context())
	a.json(w, http.StatusOK, result)
}
