package runner

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

type scriptedText struct {
	output string
	err    error
	system string
	user   string
}

func (s *scriptedText) Complete(ctx context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func videoJob(t *testing.T, st store.Store, payload domain.VideoPayload) *domain.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	job := &domain.Job{
		ID:        "j2",
		Type:      domain.JobTypeVideo,
		Status:    domain.JobStatusProcessing,
		Payload:   raw,
		CreatedAt: time.Now(),
	}
	if err := st.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestVideoHandlerProducesStoryboard(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	gen := &scriptedText{output: "Shot 1: opening frame\nShot 2: product close-up"}
	h := NewVideoHandler(gen, st, zerolog.Nop())
	job := videoJob(t, st, domain.VideoPayload{Script: "launch teaser", Template: "promo"})

	artifact, err := h.Process(context.Background(), job)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if artifact.Kind != "storyboard" {
		t.Fatalf("artifact kind = %q, want storyboard", artifact.Kind)
	}
	if !strings.HasPrefix(artifact.URL, "data:text/plain;base64,") {
		t.Fatalf("artifact url = %q, want encoded text data uri", artifact.URL)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(artifact.URL, "data:text/plain;base64,"))
	if err != nil {
		t.Fatalf("artifact not base64 encoded: %v", err)
	}
	if string(decoded) != gen.output {
		t.Fatalf("decoded storyboard = %q, want provider output", decoded)
	}
	if !strings.Contains(gen.system, `"promo"`) {
		t.Fatalf("system instruction = %q, want template name embedded", gen.system)
	}
	if gen.user != "launch teaser" {
		t.Fatalf("user prompt = %q, want the script", gen.user)
	}
}

func TestVideoHandlerProviderNotConfigured(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	h := NewVideoHandler(nil, st, zerolog.Nop())
	job := videoJob(t, st, domain.VideoPayload{Script: "launch teaser", Template: "promo"})

	_, err := h.Process(context.Background(), job)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
	if !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("err = %q, want message containing %q", err.Error(), "not configured")
	}
}

// With no text provider the job must land in error state with a
// "not configured" message.
func TestVideoJobFailsTerminallyWithoutProvider(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	raw, _ := json.Marshal(domain.VideoPayload{Script: "launch teaser", Template: "promo"})
	_ = st.Create(context.Background(), &domain.Job{
		ID:        "j2",
		Type:      domain.JobTypeVideo,
		Status:    domain.JobStatusQueued,
		Payload:   raw,
		CreatedAt: time.Now(),
	})
	handler := NewVideoHandler(nil, st, zerolog.Nop())
	run := newTestRunner(st, map[domain.JobType]Handler{domain.JobTypeVideo: handler})

	outcome, err := run.ProcessOne(context.Background(), "")
	if err != nil {
		t.Fatalf("ProcessOne returned error: %v", err)
	}
	if outcome.Status != domain.JobStatusError {
		t.Fatalf("status = %q, want error", outcome.Status)
	}

	job, _ := st.GetByID(context.Background(), "j2")
	if job.Status != domain.JobStatusError {
		t.Fatalf("job status = %q, want error", job.Status)
	}
	if !strings.Contains(job.Error, "not configured") {
		t.Fatalf("job error = %q, want message containing %q", job.Error, "not configured")
	}
	if job.OutputURL != "" {
		t.Fatalf("output url = %q, want empty on error", job.OutputURL)
	}
}

func TestVideoHandlerMissingScript(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	h := NewVideoHandler(&scriptedText{output: "x"}, st, zerolog.Nop())
	job := videoJob(t, st, domain.VideoPayload{Template: "promo"})

	if _, err := h.Process(context.Background(), job); err == nil {
		t.Fatalf("expected error for missing script")
	}
}
