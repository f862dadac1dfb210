package main

import (
	"context"
	"net/http"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
	"github.com/solutionspma/yocreator-sub001/internal/infra"
	"github.com/solutionspma/yocreator-sub001/internal/providers/image"
	"github.com/solutionspma/yocreator-sub001/internal/providers/speech"
	"github.com/solutionspma/yocreator-sub001/internal/providers/text"
	"github.com/solutionspma/yocreator-sub001/internal/runner"
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

// newJobStore selects the store backend: direct Postgres when DATABASE_URL is
// set, the external REST store otherwise.
func newJobStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(pool, cfg.JobStoreTable), pool.Close, nil
	}
	st, err := store.NewRESTStore(store.RESTOptions{
		BaseURL: cfg.JobStoreURL,
		APIKey:  cfg.JobStoreAPIKey,
		Table:   cfg.JobStoreTable,
		Logger:  &logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return st, func() {}, nil
}

// buildHandlers wires the per-type job handlers from whichever providers are
// configured. Missing providers leave their handler degraded, not absent:
// the handler itself reports "provider not configured" at processing time.
func buildHandlers(cfg *infra.Config, st store.Store, logger infra.Logger) map[domain.JobType]runner.Handler {
	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}

	var synths []speech.Synthesizer
	if cfg.ElevenLabsAPIKey != "" {
		eleven, err := speech.NewElevenLabs(speech.ElevenLabsOptions{
			APIKey:     cfg.ElevenLabsAPIKey,
			BaseURL:    cfg.ElevenLabsBaseURL,
			ModelID:    cfg.ElevenLabsModel,
			VoiceID:    cfg.ElevenLabsVoiceID,
			HTTPClient: providerClient,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("wiring: elevenlabs unavailable")
		} else {
			synths = append(synths, eleven)
		}
	}

	var (
		images runner.ImageGenerator
		texts  runner.TextGenerator
	)
	if cfg.OpenAIAPIKey != "" {
		if tts, err := speech.NewOpenAITTS(speech.OpenAITTSOptions{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAITTSModel,
			HTTPClient: providerClient,
		}); err != nil {
			logger.Warn().Err(err).Msg("wiring: openai tts unavailable")
		} else {
			synths = append(synths, tts)
		}
		if img, err := image.NewOpenAI(image.OpenAIOptions{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIImageModel,
			HTTPClient: providerClient,
		}); err != nil {
			logger.Warn().Err(err).Msg("wiring: image provider unavailable")
		} else {
			images = img
		}
		if txt, err := text.NewOpenAI(text.OpenAIOptions{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAITextModel,
			HTTPClient: providerClient,
		}); err != nil {
			logger.Warn().Err(err).Msg("wiring: text provider unavailable")
		} else {
			texts = txt
		}
	}

	return map[domain.JobType]runner.Handler{
		domain.JobTypeVoice:  runner.NewVoiceHandler(synths, st, logger),
		domain.JobTypeAvatar: runner.NewAvatarHandler(images, st, logger),
		domain.JobTypeVideo:  runner.NewVideoHandler(texts, st, logger),
	}
}
