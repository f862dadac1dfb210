package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIProviderName   = "openai-tts"
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "tts-1"
	openAIDefaultTimeout = 60 * time.Second
	openAIDefaultVoice   = "alloy"
)

// speakerVoices maps the abstract speaker tokens used by job payloads onto
// the provider voice catalog. Unrecognized tokens resolve to the default.
var speakerVoices = map[string]string{
	"male_1":   "onyx",
	"male_2":   "echo",
	"female_1": "nova",
	"female_2": "shimmer",
	"narrator": "fable",
}

// OpenAITTSOptions configures the general text-to-speech client.
type OpenAITTSOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// OpenAITTS calls the OpenAI speech endpoint. It serves as the fallback for
// voice jobs when the cloning provider fails or is not configured.
type OpenAITTS struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type openAISpeechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// NewOpenAITTS builds the client; the API key is required.
func NewOpenAITTS(opts OpenAITTSOptions) (*OpenAITTS, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = openAIDefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAITTS{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		model:   model,
		client:  client,
	}, nil
}

// Name identifies the provider in logs.
func (o *OpenAITTS) Name() string { return openAIProviderName }

// VoiceForSpeaker resolves an abstract speaker token to a provider voice.
func VoiceForSpeaker(speaker string) string {
	if voice, ok := speakerVoices[strings.ToLower(strings.TrimSpace(speaker))]; ok {
		return voice
	}
	return openAIDefaultVoice
}

// Synthesize requests MP3 audio for the given text, mapping the abstract
// speaker token onto the provider voice catalog.
func (o *OpenAITTS) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	payload := openAISpeechRequest{
		Model: o.model,
		Input: req.Text,
		Voice: VoiceForSpeaker(req.Speaker),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := o.baseURL + "/audio/speech"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoke openai tts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return nil, fmt.Errorf("openai tts status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return nil, fmt.Errorf("openai tts status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("openai tts returned empty audio")
	}
	return audio, nil
}

var _ Synthesizer = (*OpenAITTS)(nil)
