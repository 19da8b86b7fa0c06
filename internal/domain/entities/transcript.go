package entities

import (
	"time"

	"gorm.io/datatypes"
)

// TranscriptSegment is one transcribed chunk
type TranscriptSegment struct {
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence *float64  `json:"confidence,omitempty"`
}

// NewTranscriptSegment stamps text with the current time
func NewTranscriptSegment(text string, at time.Time) TranscriptSegment {
	return TranscriptSegment{Text: text, Timestamp: at}
}

// Transcript is the append-only transcript document of a meeting
type Transcript struct {
	MeetingID   string                                 `json:"meeting_id" gorm:"type:varchar(255);primary_key"`
	Segments    datatypes.JSONSlice[TranscriptSegment] `json:"segments" gorm:"type:jsonb;not null;default:'[]'"`
	IsComplete  bool                                   `json:"is_complete" gorm:"not null;default:false"`
	LastUpdated time.Time                              `json:"last_updated" gorm:"type:timestamp;not null"`
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}

// NewTranscript creates an empty transcript document
func NewTranscript(meetingID string) *Transcript {
	return &Transcript{
		MeetingID:   meetingID,
		Segments:    datatypes.JSONSlice[TranscriptSegment]{},
		LastUpdated: time.Now(),
	}
}

// Text joins all segments with newlines
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	return JoinSegments(t.Segments)
}

// JoinSegments joins segment texts with newlines
func JoinSegments(segments []TranscriptSegment) string {
	n := 0
	for _, s := range segments {
		n += len(s.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, s := range segments {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, s.Text...)
	}
	return string(buf)
}
