package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
	"github.com/solutionspma/yocreator-sub001/internal/infra"
)

const (
	restDefaultTimeout = 15 * time.Second

	// How many times Claim re-reads the queue head after losing the
	// conditional update to a concurrent claimant.
	claimAttempts = 3
)

// RESTOptions configures the REST-backed job store client.
type RESTOptions struct {
	BaseURL    string
	APIKey     string
	Table      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// RESTStore talks to the external job store over its PostgREST-style query
// interface: list queries via query parameters, point lookups by id, partial
// updates via PATCH. Authentication uses the service key both as apikey
// header and bearer token.
type RESTStore struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
	logger  infra.Logger
}

// NewRESTStore validates the options and builds the client. A missing URL or
// key is a configuration error; the store is never optional.
func NewRESTStore(opts RESTOptions) (*RESTStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("job store url is required")
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("job store api key is required")
	}
	table := strings.TrimSpace(opts.Table)
	if table == "" {
		table = "render_jobs"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: restDefaultTimeout}
	}
	var logger infra.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &RESTStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		table:   table,
		client:  client,
		logger:  logger,
	}, nil
}

// Create inserts a new job row.
func (s *RESTStore) Create(ctx context.Context, job *domain.Job) error {
	var rows []domain.Job
	err := s.do(ctx, http.MethodPost, url.Values{}, job, "return=representation", &rows)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	if len(rows) > 0 {
		*job = rows[0]
	}
	return nil
}

// GetByID fetches a single job row by its identifier.
func (s *RESTStore) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("limit", "1")
	var rows []domain.Job
	if err := s.do(ctx, http.MethodGet, q, nil, "", &rows); err != nil {
		return nil, fmt.Errorf("fetch job %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return &rows[0], nil
}

// ListRecent returns the newest jobs first.
func (s *RESTStore) ListRecent(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	q := url.Values{}
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))
	var rows []domain.Job
	if err := s.do(ctx, http.MethodGet, q, nil, "", &rows); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return rows, nil
}

// Claim moves the oldest queued job to processing and returns it. The update
// is conditional on the row still being queued, so concurrent claimants can
// lose the race; losers re-read the queue head a few times before reporting
// the queue empty.
func (s *RESTStore) Claim(ctx context.Context) (*domain.Job, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		q := url.Values{}
		q.Set("status", "eq."+string(domain.JobStatusQueued))
		q.Set("order", "created_at.asc")
		q.Set("limit", "1")
		var head []domain.Job
		if err := s.do(ctx, http.MethodGet, q, nil, "", &head); err != nil {
			return nil, fmt.Errorf("fetch queue head: %w", err)
		}
		if len(head) == 0 {
			return nil, domain.ErrNoQueuedJobs
		}

		cond := url.Values{}
		cond.Set("id", "eq."+head[0].ID)
		cond.Set("status", "eq."+string(domain.JobStatusQueued))
		body := map[string]any{
			"status":     domain.JobStatusProcessing,
			"progress":   0,
			"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
		}
		var claimed []domain.Job
		if err := s.do(ctx, http.MethodPatch, cond, body, "return=representation", &claimed); err != nil {
			return nil, fmt.Errorf("claim job %s: %w", head[0].ID, err)
		}
		if len(claimed) > 0 {
			return &claimed[0], nil
		}
		s.logger.Debug().Str("job_id", head[0].ID).Msg("store: lost claim race, retrying")
	}
	return nil, domain.ErrNoQueuedJobs
}

// Patch applies a partial update to the job row, always stamping updated_at.
func (s *RESTStore) Patch(ctx context.Context, id string, p Patch) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if err := s.do(ctx, http.MethodPatch, q, p.Fields(time.Now()), "return=minimal", nil); err != nil {
		return fmt.Errorf("patch job %s: %w", id, err)
	}
	return nil
}

func (s *RESTStore) do(ctx context.Context, method string, query url.Values, payload any, prefer string, out any) error {
	endpoint := s.baseURL + "/" + s.table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("job store status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("job store status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode job store response: %w", err)
	}
	return nil
}

var _ Store = (*RESTStore)(nil)
