package runner

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
	"github.com/solutionspma/yocreator-sub001/internal/infra"
	"github.com/solutionspma/yocreator-sub001/internal/providers/speech"
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

const audioDataURIPrefix = "data:audio/mp3;base64,"

// VoiceHandler turns voice job payloads into inline-encoded audio. Providers
// are attempted in order: the cloning provider first when configured, then
// the general text-to-speech fallback. A fallback success is silent to the
// caller; it is logged but the job still completes cleanly.
type VoiceHandler struct {
	synths []speech.Synthesizer
	store  store.Store
	logger infra.Logger
}

// NewVoiceHandler creates the handler with the ordered provider attempts.
func NewVoiceHandler(synths []speech.Synthesizer, st store.Store, logger infra.Logger) *VoiceHandler {
	return &VoiceHandler{synths: synths, store: st, logger: logger}
}

// Process synthesizes the payload text and returns an inline MP3 artifact.
func (h *VoiceHandler) Process(ctx context.Context, job *domain.Job) (*Artifact, error) {
	var payload domain.VoicePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode voice payload: %w", err)
	}
	if strings.TrimSpace(payload.Text) == "" {
		return nil, errors.New("voice payload missing text")
	}
	if len(h.synths) == 0 {
		return nil, fmt.Errorf("speech synthesis: %w", domain.ErrProviderUnavailable)
	}

	reportProgress(ctx, h.store, h.logger, job.ID, 10)

	req := speech.Request{
		Text:    payload.Text,
		Speaker: payload.Speaker,
		VoiceID: payload.VoiceID,
	}

	reportProgress(ctx, h.store, h.logger, job.ID, 30)

	var (
		audio   []byte
		lastErr error
	)
	for i, synth := range h.synths {
		audio, lastErr = synth.Synthesize(ctx, req)
		if lastErr == nil {
			if i > 0 {
				h.logger.Warn().
					Str("job_id", job.ID).
					Str("provider", synth.Name()).
					Msg("voice: completed via fallback provider")
			}
			break
		}
		h.logger.Warn().
			Err(lastErr).
			Str("job_id", job.ID).
			Str("provider", synth.Name()).
			Msg("voice: synthesis attempt failed")
	}
	if lastErr != nil {
		if len(h.synths) < 2 {
			// The primary failed and no fallback provider exists.
			return nil, fmt.Errorf("fallback speech %w (primary failed: %v)", domain.ErrProviderUnavailable, lastErr)
		}
		return nil, fmt.Errorf("speech synthesis: %w", lastErr)
	}

	reportProgress(ctx, h.store, h.logger, job.ID, 80)

	return &Artifact{
		URL:  audioDataURIPrefix + base64.StdEncoding.EncodeToString(audio),
		Kind: "audio",
	}, nil
}

var _ Handler = (*VoiceHandler)(nil)
