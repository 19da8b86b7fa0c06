package dto

import (
	"time"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// MeetingSummaryResponse represents the API response for meeting summary.
// Pending is set, with Summary holding the waiting message, while nothing
// has been generated yet.
type MeetingSummaryResponse struct {
	MeetingID   string            `json:"meeting_id"`
	SummaryID   string            `json:"summary_id,omitempty"`
	Summary     string            `json:"summary"`
	ActionItems []string          `json:"action_items"`
	Insights    entities.Insights `json:"insights"`
	Pending     bool              `json:"pending"`
	LastUpdated *time.Time        `json:"last_updated,omitempty"`
}

// SummaryStatusResponse represents the result of a generation request
type SummaryStatusResponse struct {
	MeetingID string                  `json:"meeting_id"`
	Outcome   string                  `json:"outcome"`
	Summary   *MeetingSummaryResponse `json:"summary,omitempty"`
}

// AskRequest is a question about one meeting
type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

// ChatResponse is the question and answer history of a meeting
type ChatResponse struct {
	MeetingID string               `json:"meeting_id"`
	Chat      []entities.ChatEntry `json:"chat"`
}

// CleanSegmentRequest carries a raw transcript chunk
type CleanSegmentRequest struct {
	Text string `json:"text" validate:"required"`
}

// CleanSegmentResponse carries the cleaned chunk
type CleanSegmentResponse struct {
	Text string `json:"text"`
}

// MemoryResponse is one meeting matched by a memories search
type MemoryResponse struct {
	MeetingID string     `json:"meeting_id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	Score     float64    `json:"score"`
}
