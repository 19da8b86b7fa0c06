package meeting

import (
	"time"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// EventResponse is a calendar event with a video link
type EventResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	MeetLink    string     `json:"meet_link"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// SyncResponse lists the meetings created by a calendar sync
type SyncResponse struct {
	Saved []string `json:"saved"`
	Count int      `json:"count"`
}

// RecordingResponse describes a recording session
type RecordingResponse struct {
	MeetingID string     `json:"meeting_id"`
	Recording bool       `json:"recording"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// TranscriptResponse is a meeting transcript
type TranscriptResponse struct {
	MeetingID   string                       `json:"meeting_id"`
	Segments    []entities.TranscriptSegment `json:"segments"`
	IsComplete  bool                         `json:"is_complete"`
	LastUpdated *time.Time                   `json:"last_updated,omitempty"`
}

// ExportResponse carries a presigned transcript download URL
type ExportResponse struct {
	URL string `json:"url"`
}
