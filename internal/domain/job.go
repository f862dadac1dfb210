package domain

import (
	"encoding/json"
	"time"
)

// JobType enumerates supported render job categories. The set is closed;
// anything else is rejected at submission and fails dispatch.
type JobType string

const (
	JobTypeVoice  JobType = "voice"
	JobTypeAvatar JobType = "avatar"
	JobTypeVideo  JobType = "video"
)

// Valid reports whether t is one of the supported job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeVoice, JobTypeAvatar, JobTypeVideo:
		return true
	}
	return false
}

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// Terminal reports whether the status admits no further automatic transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

// Job is one unit of render work. The record is owned by the job store; the
// pipeline only reads it and patches status, progress and the terminal fields.
// Once status is terminal, exactly one of OutputURL/Error is populated.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Status    JobStatus       `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Progress  int             `json:"progress"`
	OutputURL string          `json:"output_url,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// VoicePayload is the input for voice jobs. VoiceID selects an explicit voice
// on the cloning provider; Speaker is the abstract token the fallback provider
// maps through its lookup table.
type VoicePayload struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
	VoiceID string `json:"voice_id,omitempty"`
}

// AvatarPayload is the input for avatar jobs.
type AvatarPayload struct {
	Name     string `json:"name"`
	Style    string `json:"style"`
	Stylized bool   `json:"stylized"`
}

// VideoPayload is the input for video jobs. The template parameterizes the
// storyboard instruction sent to the text provider.
type VideoPayload struct {
	Script   string `json:"script"`
	Template string `json:"template"`
}
