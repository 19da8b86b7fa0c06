package entities

import (
	"time"

	"gorm.io/datatypes"
)

// ChatEntry is one question and answer about a meeting
type ChatEntry struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// ChatLog is the Q&A history of a meeting
type ChatLog struct {
	MeetingID   string                         `json:"meeting_id" gorm:"type:varchar(255);primary_key"`
	Chat        datatypes.JSONSlice[ChatEntry] `json:"chat" gorm:"type:jsonb;not null;default:'[]'"`
	LastUpdated time.Time                      `json:"last_updated" gorm:"type:timestamp;not null"`
}

// TableName specifies the table name for GORM
func (ChatLog) TableName() string {
	return "chats"
}
