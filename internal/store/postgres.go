package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
)

// PostgresStore implements Store against a directly reachable Postgres
// database. Claim uses FOR UPDATE SKIP LOCKED so that exactly one claimant
// wins each queued row.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresStore creates a Postgres-backed job store.
func NewPostgresStore(pool *pgxpool.Pool, table string) *PostgresStore {
	if strings.TrimSpace(table) == "" {
		table = "render_jobs"
	}
	return &PostgresStore{pool: pool, table: table}
}

const jobColumns = `id, type, status, coalesce(payload, '{}'::jsonb), progress, coalesce(output_url, ''), coalesce(error, ''), created_at, updated_at`

// Create inserts a new job row.
func (s *PostgresStore) Create(ctx context.Context, job *domain.Job) error {
	query := fmt.Sprintf(`
INSERT INTO %s (id, type, status, payload, progress)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at;
`, s.table)
	row := s.pool.QueryRow(ctx, query, job.ID, job.Type, job.Status, job.Payload, job.Progress)
	if err := row.Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1;`, jobColumns, s.table)
	job, err := scanJob(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetch job %s: %w", id, err)
	}
	return job, nil
}

// ListRecent returns the newest jobs first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC LIMIT $1;`, jobColumns, s.table)
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// Claim atomically moves the oldest queued job to processing and returns it.
func (s *PostgresStore) Claim(ctx context.Context) (*domain.Job, error) {
	query := fmt.Sprintf(`
WITH next_job AS (
    SELECT id
    FROM %s
    WHERE status = 'queued'
    ORDER BY created_at ASC
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
UPDATE %s
SET status = 'processing', progress = 0, updated_at = now()
WHERE id IN (SELECT id FROM next_job)
RETURNING %s;
`, s.table, s.table, jobColumns)
	job, err := scanJob(s.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoQueuedJobs
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return job, nil
}

// Patch applies a partial update, always stamping updated_at.
func (s *PostgresStore) Patch(ctx context.Context, id string, p Patch) error {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.Progress != nil {
		add("progress", *p.Progress)
	}
	if p.OutputURL != nil {
		add("output_url", *p.OutputURL)
	}
	if p.Error != nil {
		add("error", *p.Error)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1;`, s.table, strings.Join(sets, ", "))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.Type,
		&job.Status,
		&job.Payload,
		&job.Progress,
		&job.OutputURL,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

var _ Store = (*PostgresStore)(nil)
