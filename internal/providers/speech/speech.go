// Package speech contains the speech synthesis provider clients. Clients do
// not retry or fall back internally; the voice handler owns that policy.
package speech

import "context"

// Request carries the inputs for one synthesis call. VoiceID addresses a
// cloned voice on providers that support it; Speaker is the abstract token
// providers map onto their own voice catalog.
type Request struct {
	Text    string
	Speaker string
	VoiceID string
}

// Synthesizer converts text into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
	Name() string
}
