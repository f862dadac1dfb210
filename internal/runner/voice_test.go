package runner

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
	"github.com/solutionspma/yocreator-sub001/internal/providers/speech"
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

// scriptedSynth fails or succeeds on demand and records the requests it saw.
type scriptedSynth struct {
	name     string
	err      error
	audio    []byte
	requests []speech.Request
}

func (s *scriptedSynth) Name() string { return s.name }

func (s *scriptedSynth) Synthesize(ctx context.Context, req speech.Request) ([]byte, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

func voiceJob(t *testing.T, st store.Store, payload domain.VoicePayload) *domain.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	job := &domain.Job{
		ID:        "j1",
		Type:      domain.JobTypeVoice,
		Status:    domain.JobStatusProcessing,
		Payload:   raw,
		CreatedAt: time.Now(),
	}
	if err := st.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestVoiceHandlerFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	primary := &scriptedSynth{name: "cloning", err: errors.New("cloning status 500: upstream busy")}
	fallback := &scriptedSynth{name: "tts", audio: []byte("mp3-bytes")}
	h := NewVoiceHandler([]speech.Synthesizer{primary, fallback}, st, zerolog.Nop())
	job := voiceJob(t, st, domain.VoicePayload{Text: "hi", Speaker: "male_1"})

	artifact, err := h.Process(context.Background(), job)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(primary.requests) != 1 {
		t.Fatalf("primary attempts = %d, want 1", len(primary.requests))
	}
	if len(fallback.requests) != 1 {
		t.Fatalf("fallback attempts = %d, want 1 after primary failure", len(fallback.requests))
	}
	if !strings.HasPrefix(artifact.URL, "data:audio/mp3;base64,") {
		t.Fatalf("artifact url = %q, want inline mp3 data uri", artifact.URL)
	}
}

func TestVoiceHandlerFallbackOnlyConfigured(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	fallback := &scriptedSynth{name: "tts", audio: []byte("audio")}
	h := NewVoiceHandler([]speech.Synthesizer{fallback}, st, zerolog.Nop())
	job := voiceJob(t, st, domain.VoicePayload{Text: "hi", Speaker: "male_1"})

	artifact, err := h.Process(context.Background(), job)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if !strings.HasPrefix(artifact.URL, "data:audio/mp3;base64,") {
		t.Fatalf("artifact url = %q, want inline mp3 data uri", artifact.URL)
	}
	if got := fallback.requests[0].Speaker; got != "male_1" {
		t.Fatalf("speaker = %q, want male_1 passed through", got)
	}
}

func TestVoiceHandlerPrimaryFailsNoFallback(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	primary := &scriptedSynth{name: "cloning", err: errors.New("cloning status 401: bad key")}
	h := NewVoiceHandler([]speech.Synthesizer{primary}, st, zerolog.Nop())
	job := voiceJob(t, st, domain.VoicePayload{Text: "hi"})

	_, err := h.Process(context.Background(), job)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestVoiceHandlerNoProviders(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	h := NewVoiceHandler(nil, st, zerolog.Nop())
	job := voiceJob(t, st, domain.VoicePayload{Text: "hi"})

	_, err := h.Process(context.Background(), job)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestVoiceHandlerAllProvidersFail(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	primary := &scriptedSynth{name: "cloning", err: errors.New("cloning status 500")}
	fallback := &scriptedSynth{name: "tts", err: errors.New("tts status 429: rate limited")}
	h := NewVoiceHandler([]speech.Synthesizer{primary, fallback}, st, zerolog.Nop())
	job := voiceJob(t, st, domain.VoicePayload{Text: "hi"})

	_, err := h.Process(context.Background(), job)
	if err == nil {
		t.Fatalf("expected error when every provider fails")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v, want last provider failure surfaced", err)
	}
}

func TestVoiceHandlerMissingText(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	h := NewVoiceHandler([]speech.Synthesizer{&scriptedSynth{name: "tts", audio: []byte("x")}}, st, zerolog.Nop())
	job := voiceJob(t, st, domain.VoicePayload{Speaker: "male_1"})

	if _, err := h.Process(context.Background(), job); err == nil {
		t.Fatalf("expected error for missing text")
	}
}

// Fallback success must leave no error on the job once the runner finalizes.
func TestVoiceFallbackCompletesJobCleanly(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore()
	raw, _ := json.Marshal(domain.VoicePayload{Text: "hi", Speaker: "male_1"})
	_ = st.Create(context.Background(), &domain.Job{
		ID:        "j1",
		Type:      domain.JobTypeVoice,
		Status:    domain.JobStatusQueued,
		Payload:   raw,
		CreatedAt: time.Now(),
	})
	primary := &scriptedSynth{name: "cloning", err: errors.New("down")}
	fallback := &scriptedSynth{name: "tts", audio: []byte("mp3")}
	handler := NewVoiceHandler([]speech.Synthesizer{primary, fallback}, st, zerolog.Nop())
	run := newTestRunner(st, map[domain.JobType]Handler{domain.JobTypeVoice: handler})

	outcome, err := run.ProcessOne(context.Background(), "")
	if err != nil {
		t.Fatalf("ProcessOne returned error: %v", err)
	}
	if outcome.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %q, want completed", outcome.Status)
	}

	job, _ := st.GetByID(context.Background(), "j1")
	if job.Error != "" {
		t.Fatalf("job error = %q, want empty after silent fallback", job.Error)
	}
	if job.Progress != 100 {
		t.Fatalf("progress = %d, want 100", job.Progress)
	}
	if !strings.HasPrefix(job.OutputURL, "data:audio/mp3;base64,") {
		t.Fatalf("output url = %q, want inline mp3 data uri", job.OutputURL)
	}
}
