package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// It is loaded once at process start and read-only afterwards; components
// receive the values they need through their constructors.
type Config struct {
	AppEnv string
	Port   string

	// Job store. Either the REST endpoint of the external store or a direct
	// Postgres connection; DatabaseURL wins when both are present.
	JobStoreURL    string
	JobStoreAPIKey string
	JobStoreTable  string
	DatabaseURL    string

	// Speech providers. ElevenLabs is the cloning provider preferred for
	// voice jobs; OpenAI text-to-speech is the fallback.
	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	ElevenLabsModel   string
	ElevenLabsVoiceID string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAITTSModel   string
	OpenAIImageModel string
	OpenAITextModel  string

	AllowedOrigins    []string
	ProcessRateLimit  int
	ProcessRateWindow time.Duration

	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	ProviderTimeout    time.Duration
	WorkerPollInterval time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Missing job store credentials are a configuration
// error: the store is required, providers are optional and surface as
// "provider not configured" at processing time instead.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		JobStoreURL:        os.Getenv("JOB_STORE_URL"),
		JobStoreAPIKey:     os.Getenv("JOB_STORE_API_KEY"),
		JobStoreTable:      getEnv("JOB_STORE_TABLE", "render_jobs"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ElevenLabsAPIKey:   os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL:  getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		ElevenLabsModel:    getEnv("ELEVENLABS_MODEL", "eleven_multilingual_v2"),
		ElevenLabsVoiceID:  os.Getenv("ELEVENLABS_VOICE_ID"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAITTSModel:     getEnv("OPENAI_TTS_MODEL", "tts-1"),
		OpenAIImageModel:   getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		OpenAITextModel:    getEnv("OPENAI_TEXT_MODEL", "gpt-4o-mini"),
		AllowedOrigins:     splitCSV(os.Getenv("ALLOWED_ORIGINS")),
		ProcessRateLimit:   getEnvInt("PROCESS_RATE_LIMIT", 30),
		ProcessRateWindow:  time.Second * time.Duration(getEnvInt("PROCESS_RATE_WINDOW_SECONDS", 60)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ProviderTimeout:    time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)),
		WorkerPollInterval: time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 2)),
	}

	if cfg.DatabaseURL == "" {
		if cfg.JobStoreURL == "" {
			return nil, fmt.Errorf("JOB_STORE_URL is required when DATABASE_URL is not set")
		}
		if cfg.JobStoreAPIKey == "" {
			return nil, fmt.Errorf("JOB_STORE_API_KEY is required when DATABASE_URL is not set")
		}
	}

	return cfg, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
