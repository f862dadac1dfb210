package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
)

type createJobRequest struct {
	Type    domain.JobType  `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobsCreate submits a new render job in state queued.
func (a *App) JobsCreate(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if !req.Type.Valid() {
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported job type")
		return
	}
	if len(req.Payload) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "payload is required")
		return
	}

	now := time.Now().UTC()
	job := &domain.Job{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Status:    domain.JobStatusQueued,
		Payload:   req.Payload,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Store.Create(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Msg("handlers: create job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.json(w, http.StatusAccepted, job)
}

// JobsGet returns one job for status polling.
func (a *App) JobsGet(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}
	job, err := a.Store.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("handlers: fetch job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to fetch job")
		return
	}
	a.json(w, http.StatusOK, job)
}

// JobsList returns recent jobs, newest first.
func (a *App) JobsList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	jobs, err := a.Store.ListRecent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: list jobs failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	a.json(w, http.StatusOK, map[string]any{"jobs": jobs})
}
