package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	elevenLabsProviderName   = "elevenlabs"
	elevenLabsDefaultBaseURL = "https://api.elevenlabs.io/v1"
	elevenLabsDefaultModel   = "eleven_multilingual_v2"
	elevenLabsDefaultVoice   = "21m00Tcm4TlvDq8ikWAM"
	elevenLabsDefaultTimeout = 60 * time.Second
)

// ElevenLabsOptions configures the cloning speech provider client.
type ElevenLabsOptions struct {
	APIKey     string
	BaseURL    string
	ModelID    string
	VoiceID    string
	HTTPClient *http.Client
}

// ElevenLabs calls the ElevenLabs text-to-speech API. It is the preferred
// provider for voice jobs because it supports cloned voices via voice ids.
type ElevenLabs struct {
	apiKey  string
	baseURL string
	modelID string
	voiceID string
	client  *http.Client
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// NewElevenLabs builds the client; the API key is required.
func NewElevenLabs(opts ElevenLabsOptions) (*ElevenLabs, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("elevenlabs api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = elevenLabsDefaultBaseURL
	}
	modelID := strings.TrimSpace(opts.ModelID)
	if modelID == "" {
		modelID = elevenLabsDefaultModel
	}
	voiceID := strings.TrimSpace(opts.VoiceID)
	if voiceID == "" {
		voiceID = elevenLabsDefaultVoice
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: elevenLabsDefaultTimeout}
	}
	return &ElevenLabs{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		modelID: modelID,
		voiceID: voiceID,
		client:  client,
	}, nil
}

// Name identifies the provider in logs.
func (e *ElevenLabs) Name() string { return elevenLabsProviderName }

// Synthesize requests MP3 audio for the given text. The request voice id wins
// over the configured default.
func (e *ElevenLabs) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	voiceID := strings.TrimSpace(req.VoiceID)
	if voiceID == "" {
		voiceID = e.voiceID
	}
	payload := elevenLabsRequest{Text: req.Text, ModelID: e.modelID}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, url.PathEscape(voiceID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoke elevenlabs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return nil, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return nil, fmt.Errorf("elevenlabs status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("elevenlabs returned empty audio")
	}
	return audio, nil
}

var _ Synthesizer = (*ElevenLabs)(nil)
