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
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

// TextGenerator is the text provider boundary the video handler needs.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const storyboardDataURIPrefix = "data:text/plain;base64,"

// storyboardInstruction is the fixed system instruction, parameterized by the
// requested template name.
const storyboardInstruction = "You are a video storyboard writer. Break the provided script into a numbered shot-by-shot storyboard for a %q template video. For each shot give: shot number, duration in seconds, visual description, on-screen text, and narration. Respond in plain text."

// VideoHandler turns video job payloads into a textual storyboard. No actual
// video is rendered; the artifact is the encoded storyboard text.
type VideoHandler struct {
	text   TextGenerator
	store  store.Store
	logger infra.Logger
}

// NewVideoHandler creates the handler; text may be nil when the provider is
// not configured.
func NewVideoHandler(text TextGenerator, st store.Store, logger infra.Logger) *VideoHandler {
	return &VideoHandler{text: text, store: st, logger: logger}
}

// Process prompts the text provider with the storyboard instruction and the
// job script, returning the storyboard as an inline-encoded text artifact.
func (h *VideoHandler) Process(ctx context.Context, job *domain.Job) (*Artifact, error) {
	var payload domain.VideoPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode video payload: %w", err)
	}
	if strings.TrimSpace(payload.Script) == "" {
		return nil, errors.New("video payload missing script")
	}
	if h.text == nil {
		return nil, fmt.Errorf("text generation: %w", domain.ErrProviderUnavailable)
	}

	reportProgress(ctx, h.store, h.logger, job.ID, 20)

	template := strings.TrimSpace(payload.Template)
	if template == "" {
		template = "default"
	}
	system := fmt.Sprintf(storyboardInstruction, template)

	storyboard, err := h.text.Complete(ctx, system, payload.Script)
	if err != nil {
		return nil, fmt.Errorf("storyboard generation: %w", err)
	}

	reportProgress(ctx, h.store, h.logger, job.ID, 70)

	return &Artifact{
		URL:  storyboardDataURIPrefix + base64.StdEncoding.EncodeToString([]byte(storyboard)),
		Kind: "storyboard",
	}, nil
}

var _ Handler = (*VideoHandler)(nil)
