package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVoiceForSpeaker(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		speaker string
		want    string
	}{
		{name: "male_token", speaker: "male_1", want: "onyx"},
		{name: "female_token", speaker: "female_2", want: "shimmer"},
		{name: "case_insensitive", speaker: "Male_1", want: "onyx"},
		{name: "unknown_defaults", speaker: "robot_9", want: "alloy"},
		{name: "empty_defaults", speaker: "", want: "alloy"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := VoiceForSpeaker(tc.speaker); got != tc.want {
				t.Fatalf("VoiceForSpeaker(%q) = %q, want %q", tc.speaker, got, tc.want)
			}
		})
	}
}

func TestOpenAITTSSynthesizeMapsVoice(t *testing.T) {
	t.Parallel()
	var captured openAISpeechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer oa-key" {
			t.Errorf("authorization = %q, want bearer oa-key", got)
		}
		if r.URL.Path != "/audio/speech" {
			t.Errorf("path = %q, want /audio/speech", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	client, err := NewOpenAITTS(OpenAITTSOptions{APIKey: "oa-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAITTS returned error: %v", err)
	}
	audio, err := client.Synthesize(context.Background(), Request{Text: "hi", Speaker: "male_1"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if len(audio) == 0 {
		t.Fatalf("expected audio bytes")
	}
	if captured.Voice != "onyx" {
		t.Fatalf("voice = %q, want onyx for male_1", captured.Voice)
	}
	if captured.Input != "hi" {
		t.Fatalf("input = %q, want hi", captured.Input)
	}
	if captured.Model != openAIDefaultModel {
		t.Fatalf("model = %q, want default %q", captured.Model, openAIDefaultModel)
	}
}

func TestOpenAITTSEmptyAudioIsError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, _ := NewOpenAITTS(OpenAITTSOptions{APIKey: "oa-key", BaseURL: srv.URL})
	if _, err := client.Synthesize(context.Background(), Request{Text: "hi"}); err == nil {
		t.Fatalf("expected error for empty audio response")
	}
}
