package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
)

func TestMemoryStoreClaimOldestFirst(t *testing.T) {
	t.Parallel()
	st := NewMemoryStore()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	offsets := map[string]time.Duration{"j1": 0, "j2": time.Minute, "j3": 2 * time.Minute}
	// Inserted out of creation order on purpose.
	for _, id := range []string{"j2", "j1", "j3"} {
		_ = st.Create(ctx, &domain.Job{
			ID:        id,
			Type:      domain.JobTypeVoice,
			Status:    domain.JobStatusQueued,
			CreatedAt: base.Add(offsets[id]),
		})
	}

	for _, want := range []string{"j1", "j2", "j3"} {
		job, err := st.Claim(ctx)
		if err != nil {
			t.Fatalf("Claim returned error: %v", err)
		}
		if job.ID != want {
			t.Fatalf("claimed %q, want %q", job.ID, want)
		}
		if job.Status != domain.JobStatusProcessing || job.Progress != 0 {
			t.Fatalf("claimed job = %+v, want processing with progress 0", job)
		}
	}

	if _, err := st.Claim(ctx); !errors.Is(err, domain.ErrNoQueuedJobs) {
		t.Fatalf("err = %v, want ErrNoQueuedJobs", err)
	}
}

func TestMemoryStorePatch(t *testing.T) {
	t.Parallel()
	st := NewMemoryStore()
	ctx := context.Background()
	_ = st.Create(ctx, &domain.Job{ID: "j1", Status: domain.JobStatusProcessing})

	msg := "boom"
	status := domain.JobStatusError
	if err := st.Patch(ctx, "j1", Patch{Status: &status, Error: &msg}); err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	job, err := st.GetByID(ctx, "j1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if job.Status != domain.JobStatusError || job.Error != "boom" {
		t.Fatalf("job = %+v, want error status with message", job)
	}

	if err := st.Patch(ctx, "missing", Patch{Status: &status}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
