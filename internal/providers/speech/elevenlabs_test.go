package speech

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewElevenLabsRequiresAPIKey(t *testing.T) {
	t.Parallel()
	if _, err := NewElevenLabs(ElevenLabsOptions{}); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	t.Parallel()
	audio := []byte("fake-mp3-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("xi-api-key"); got != "el-key" {
			t.Errorf("xi-api-key = %q, want el-key", got)
		}
		if !strings.HasSuffix(r.URL.Path, "/text-to-speech/voice-42") {
			t.Errorf("path = %q, want voice id in path", r.URL.Path)
		}
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	client, err := NewElevenLabs(ElevenLabsOptions{APIKey: "el-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewElevenLabs returned error: %v", err)
	}
	got, err := client.Synthesize(context.Background(), Request{Text: "hello", VoiceID: "voice-42"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !bytes.Equal(got, audio) {
		t.Fatalf("audio mismatch: got %d bytes", len(got))
	}
}

func TestElevenLabsDefaultVoiceWhenUnset(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/text-to-speech/"+elevenLabsDefaultVoice) {
			t.Errorf("path = %q, want default voice id", r.URL.Path)
		}
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	client, _ := NewElevenLabs(ElevenLabsOptions{APIKey: "el-key", BaseURL: srv.URL})
	if _, err := client.Synthesize(context.Background(), Request{Text: "hello"}); err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
}

func TestElevenLabsSurfacesFailureBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":"quota exceeded"}`))
	}))
	defer srv.Close()

	client, _ := NewElevenLabs(ElevenLabsOptions{APIKey: "el-key", BaseURL: srv.URL})
	_, err := client.Synthesize(context.Background(), Request{Text: "hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %q, want status and body surfaced", err.Error())
	}
}
