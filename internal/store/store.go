// Package store provides access to the job store holding render job records.
// The store owns the records; the pipeline reads and patches them.
package store

import (
	"context"
	"time"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
)

// Store is the job store boundary. Claim atomically moves the oldest queued
// job to processing so that at most one caller wins it.
type Store interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Job, error)
	Claim(ctx context.Context) (*domain.Job, error)
	Patch(ctx context.Context, id string, p Patch) error
}

// Patch describes a partial update of a job record. Nil fields are left
// untouched; every patch stamps updated_at.
type Patch struct {
	Status    *domain.JobStatus
	Progress  *int
	OutputURL *string
	Error     *string
}

// Fields flattens the patch into column/value pairs including the updated_at
// stamp.
func (p Patch) Fields(now time.Time) map[string]any {
	m := map[string]any{"updated_at": now.UTC().Format(time.RFC3339Nano)}
	if p.Status != nil {
		m["status"] = string(*p.Status)
	}
	if p.Progress != nil {
		m["progress"] = *p.Progress
	}
	if p.OutputURL != nil {
		m["output_url"] = *p.OutputURL
	}
	if p.Error != nil {
		m["error"] = *p.Error
	}
	return m
}

// StatusPatch builds the common status-only patch.
func StatusPatch(status domain.JobStatus) Patch {
	return Patch{Status: &status}
}

// ProgressPatch builds a progress-only patch.
func ProgressPatch(progress int) Patch {
	return Patch{Progress: &progress}
}
