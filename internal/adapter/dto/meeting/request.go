package meeting

import "time"

// UpdateStatusRequest moves a meeting to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=invited active in_progress completed"`
}

// StartRecordingRequest declares what the client can capture
type StartRecordingRequest struct {
	Display    string `json:"display" validate:"omitempty,oneof=granted denied unsupported"`
	Microphone string `json:"microphone" validate:"omitempty,oneof=granted denied unsupported"`
}

// SegmentRequest is one transcript segment sent by a client
type SegmentRequest struct {
	Text       string     `json:"text" validate:"required"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Confidence *float64   `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// AppendTranscriptRequest appends segments to a meeting transcript
type AppendTranscriptRequest struct {
	Segments   []SegmentRequest `json:"segments" validate:"dive"`
	IsComplete bool             `json:"is_complete"`
}

// NoteRequest creates or edits a note
type NoteRequest struct {
	Content string `json:"content" validate:"required"`
}
