package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
	"github.com/solutionspma/yocreator-sub001/internal/infra"
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

// ImageGenerator is the image provider boundary the avatar handler needs.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	stylizedAvatarPrompt = "A stylized 3D character portrait of %s, %s aesthetic, expressive features, soft studio lighting, centered, clean background, rendered in a modern animated-film look"
	realisticAvatarPrompt = "A photorealistic head-and-shoulders portrait of %s, %s style, natural skin texture, professional studio lighting, neutral background, sharp focus"
)

// AvatarHandler turns avatar job payloads into a provider-hosted image URL.
type AvatarHandler struct {
	images ImageGenerator
	store  store.Store
	logger infra.Logger
}

// NewAvatarHandler creates the handler; images may be nil when the provider
// is not configured.
func NewAvatarHandler(images ImageGenerator, st store.Store, logger infra.Logger) *AvatarHandler {
	return &AvatarHandler{images: images, store: st, logger: logger}
}

// Process requests a single square avatar image and returns its hosted URL
// directly; avatar outputs are never re-hosted.
func (h *AvatarHandler) Process(ctx context.Context, job *domain.Job) (*Artifact, error) {
	var payload domain.AvatarPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode avatar payload: %w", err)
	}
	if strings.TrimSpace(payload.Name) == "" {
		return nil, errors.New("avatar payload missing name")
	}
	if h.images == nil {
		return nil, fmt.Errorf("image generation: %w", domain.ErrProviderUnavailable)
	}

	reportProgress(ctx, h.store, h.logger, job.ID, 20)

	prompt := buildAvatarPrompt(payload)
	h.logger.Debug().Str("job_id", job.ID).Bool("stylized", payload.Stylized).Msg("avatar: requesting image")

	reportProgress(ctx, h.store, h.logger, job.ID, 40)

	url, err := h.images.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("avatar image: %w", err)
	}

	reportProgress(ctx, h.store, h.logger, job.ID, 80)

	return &Artifact{URL: url, Kind: "avatar_image"}, nil
}

func buildAvatarPrompt(payload domain.AvatarPayload) string {
	name := cases.Title(language.English).String(strings.TrimSpace(payload.Name))
	style := strings.TrimSpace(payload.Style)
	if style == "" {
		style = "contemporary"
	}
	template := realisticAvatarPrompt
	if payload.Stylized {
		template = stylizedAvatarPrompt
	}
	return fmt.Sprintf(template, name, style)
}

var _ Handler = (*AvatarHandler)(nil)
