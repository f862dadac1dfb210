// Package runner drives queued render jobs to completion: it claims jobs from
// the store, dispatches them to the handler for their type and records the
// terminal outcome.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
	"github.com/solutionspma/yocreator-sub001/internal/infra"
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

// batchLimit caps how many jobs one batch drain processes. It bounds the
// external-call volume of a single invocation, it is not a rate limiter.
const batchLimit = 5

// Artifact is the single output a handler produces for a job.
type Artifact struct {
	URL  string
	Kind string
}

// Handler converts a job payload into an output artifact, reporting coarse
// progress milestones through the store as it proceeds.
type Handler interface {
	Process(ctx context.Context, job *domain.Job) (*Artifact, error)
}

// Outcome is the per-job result reported by the runner.
type Outcome struct {
	JobID     string           `json:"jobId"`
	Type      domain.JobType   `json:"type"`
	Status    domain.JobStatus `json:"status"`
	OutputURL string           `json:"outputUrl,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// BatchResult aggregates the outcomes of one batch drain.
type BatchResult struct {
	Processed int       `json:"processed"`
	Results   []Outcome `json:"results"`
	Message   string    `json:"message,omitempty"`
}

// Runner is the control loop for render jobs. One invocation is a single
// sequential flow; mutual exclusion across concurrent claimants is provided
// by the store's atomic claim.
type Runner struct {
	store    store.Store
	handlers map[domain.JobType]Handler
	logger   infra.Logger
}

// New creates a Runner routing jobs to the given per-type handlers.
func New(st store.Store, handlers map[domain.JobType]Handler, logger infra.Logger) *Runner {
	return &Runner{store: st, handlers: handlers, logger: logger}
}

// ProcessOne processes a single job. With a job id it fetches that exact job
// (absence is a hard failure); without one it claims the oldest queued job
// and returns domain.ErrNoQueuedJobs when the queue is empty. Handler
// failures become a terminal error state on the job, not an error return.
func (r *Runner) ProcessOne(ctx context.Context, jobID string) (*Outcome, error) {
	var (
		job *domain.Job
		err error
	)
	if jobID != "" {
		job, err = r.store.GetByID(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("select job %s: %w", jobID, err)
		}
		// Re-entering processing resets progress for this attempt.
		if err := r.store.Patch(ctx, job.ID, store.Patch{
			Status:   statusPtr(domain.JobStatusProcessing),
			Progress: intPtr(0),
		}); err != nil {
			return nil, fmt.Errorf("mark job %s processing: %w", job.ID, err)
		}
		job.Status = domain.JobStatusProcessing
		job.Progress = 0
	} else {
		job, err = r.store.Claim(ctx)
		if err != nil {
			return nil, err
		}
	}

	r.logger.Info().Str("job_id", job.ID).Str("type", string(job.Type)).Msg("runner: processing job")

	artifact, err := r.dispatch(ctx, job)
	if err != nil {
		return r.finalizeError(ctx, job, err), nil
	}
	return r.finalizeSuccess(ctx, job, artifact), nil
}

// ProcessBatch drains the head of the queue, up to batchLimit jobs. Failures
// in one job never halt the batch; each outcome is collected independently.
func (r *Runner) ProcessBatch(ctx context.Context) *BatchResult {
	result := &BatchResult{}
	for i := 0; i < batchLimit; i++ {
		outcome, err := r.ProcessOne(ctx, "")
		if err != nil {
			if errors.Is(err, domain.ErrNoQueuedJobs) {
				result.Message = "queue drained"
				break
			}
			r.logger.Error().Err(err).Msg("runner: batch selection failed")
			result.Message = err.Error()
			break
		}
		result.Processed++
		result.Results = append(result.Results, *outcome)
	}
	if result.Message == "" && result.Processed == batchLimit {
		result.Message = "batch limit reached"
	}
	if result.Processed == 0 && result.Message == "" {
		result.Message = "queue drained"
	}
	return result
}

func (r *Runner) dispatch(ctx context.Context, job *domain.Job) (*Artifact, error) {
	handler, ok := r.handlers[job.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownJobType, job.Type)
	}
	return handler.Process(ctx, job)
}

func (r *Runner) finalizeSuccess(ctx context.Context, job *domain.Job, artifact *Artifact) *Outcome {
	patch := store.Patch{
		Status:    statusPtr(domain.JobStatusCompleted),
		Progress:  intPtr(100),
		OutputURL: &artifact.URL,
	}
	if err := r.store.Patch(ctx, job.ID, patch); err != nil {
		// The terminal write must land; if it does not, this invocation
		// reports the job as failed even though the artifact exists.
		r.logger.Error().Err(err).Str("job_id", job.ID).Msg("runner: terminal status write failed")
		return &Outcome{
			JobID:  job.ID,
			Type:   job.Type,
			Status: domain.JobStatusError,
			Error:  fmt.Sprintf("finalize job: %v", err),
		}
	}
	r.logger.Info().
		Str("job_id", job.ID).
		Str("type", string(job.Type)).
		Str("artifact_kind", artifact.Kind).
		Msg("runner: job completed")
	return &Outcome{
		JobID:     job.ID,
		Type:      job.Type,
		Status:    domain.JobStatusCompleted,
		OutputURL: artifact.URL,
	}
}

func (r *Runner) finalizeError(ctx context.Context, job *domain.Job, procErr error) *Outcome {
	r.logger.Error().Err(procErr).Str("job_id", job.ID).Str("type", string(job.Type)).Msg("runner: job failed")
	msg := procErr.Error()
	patch := store.Patch{
		Status: statusPtr(domain.JobStatusError),
		Error:  &msg,
	}
	if err := r.store.Patch(ctx, job.ID, patch); err != nil {
		r.logger.Error().Err(err).Str("job_id", job.ID).Msg("runner: error status write failed")
	}
	return &Outcome{
		JobID:  job.ID,
		Type:   job.Type,
		Status: domain.JobStatusError,
		Error:  msg,
	}
}

// reportProgress patches an advisory progress milestone. Failures are logged
// and never abort the surrounding handler.
func reportProgress(ctx context.Context, st store.Store, logger infra.Logger, jobID string, progress int) {
	if err := st.Patch(ctx, jobID, store.ProgressPatch(progress)); err != nil {
		logger.Warn().Err(err).Str("job_id", jobID).Int("progress", progress).Msg("runner: progress update failed")
	}
}

func statusPtr(s domain.JobStatus) *domain.JobStatus { return &s }

func intPtr(v int) *int { return &v }
