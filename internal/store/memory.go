package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
)

// MemoryStore is a mutex-guarded in-process job store. It backs tests and
// local development where neither the REST store nor Postgres is reachable.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: map[string]*domain.Job{}, now: time.Now}
}

// Create inserts a job, stamping creation time when unset.
func (s *MemoryStore) Create(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now()
	}
	job.UpdatedAt = s.now()
	clone := *job
	s.jobs[job.ID] = &clone
	return nil
}

// GetByID fetches a job by id.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *job
	return &clone, nil
}

// ListRecent returns jobs newest first.
func (s *MemoryStore) ListRecent(ctx context.Context, limit int) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	jobs := make([]domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// Claim moves the oldest queued job to processing under the store lock.
func (s *MemoryStore) Claim(ctx context.Context) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var oldest *domain.Job
	for _, job := range s.jobs {
		if job.Status != domain.JobStatusQueued {
			continue
		}
		if oldest == nil || job.CreatedAt.Before(oldest.CreatedAt) {
			oldest = job
		}
	}
	if oldest == nil {
		return nil, domain.ErrNoQueuedJobs
	}
	oldest.Status = domain.JobStatusProcessing
	oldest.Progress = 0
	oldest.UpdatedAt = s.now()
	clone := *oldest
	return &clone, nil
}

// Patch applies a partial update to the stored job.
func (s *MemoryStore) Patch(ctx context.Context, id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status != nil {
		job.Status = *p.Status
	}
	if p.Progress != nil {
		job.Progress = *p.Progress
	}
	if p.OutputURL != nil {
		job.OutputURL = *p.OutputURL
	}
	if p.Error != nil {
		job.Error = *p.Error
	}
	job.UpdatedAt = s.now()
	return nil
}

var _ Store = (*MemoryStore)(nil)
