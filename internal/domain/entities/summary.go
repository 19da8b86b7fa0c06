package entities

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// InvalidSummaryPrefix marks a model reply that asked for input instead of summarizing
const InvalidSummaryPrefix = "Please provide"

// PendingSummaryMessage is shown while no summary exists
const PendingSummaryMessage = "Summary will be generated after the meeting..."

// Sentiment of a meeting
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// IsValid checks if the sentiment is one of the enum values
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Insights is the analysis attached to a summary
type Insights struct {
	Sentiment Sentiment `json:"sentiment"`
	KeyTopics []string  `json:"key_topics"`
	Decisions []string  `json:"decisions"`
}

// Summary holds the generated outputs for one meeting
type Summary struct {
	MeetingID   string                       `json:"meeting_id" gorm:"type:varchar(255);primary_key"`
	SummaryID   string                       `json:"summary_id" gorm:"type:varchar(255);not null"`
	Summary     string                       `json:"summary" gorm:"type:text;not null"`
	ActionItems datatypes.JSONSlice[string]  `json:"action_items" gorm:"type:jsonb;not null;default:'[]'"`
	Insights    datatypes.JSONType[Insights] `json:"insights" gorm:"type:jsonb"`
	LastUpdated time.Time                    `json:"last_updated" gorm:"type:timestamp;not null"`
}

// TableName specifies the table name for GORM
func (Summary) TableName() string {
	return "summaries"
}

// NewSummary builds a summary with id "<meetingID>-<RFC3339 time>"
func NewSummary(meetingID, text string, actionItems []string, insights Insights, at time.Time) *Summary {
	if actionItems == nil {
		actionItems = []string{}
	}
	return &Summary{
		MeetingID:   meetingID,
		SummaryID:   fmt.Sprintf("%s-%s", meetingID, at.UTC().Format(time.RFC3339)),
		Summary:     text,
		ActionItems: actionItems,
		Insights:    datatypes.NewJSONType(insights),
		LastUpdated: at,
	}
}

// IsValidSummaryText reports whether text counts as a real summary
func IsValidSummaryText(text string) bool {
	return text != "" && !strings.HasPrefix(text, InvalidSummaryPrefix)
}

// IsValid reports whether the stored summary should block regeneration
func (s *Summary) IsValid() bool {
	return s != nil && IsValidSummaryText(s.Summary)
}
