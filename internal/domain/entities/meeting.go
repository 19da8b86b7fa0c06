package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatus is the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingStatusInvited    MeetingStatus = "invited"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusInProgress MeetingStatus = "in_progress"
	MeetingStatusCompleted  MeetingStatus = "completed"
)

// IsValid checks if the status is known
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusInvited, MeetingStatusActive, MeetingStatusInProgress, MeetingStatusCompleted:
		return true
	}
	return false
}

// Meeting is a calendar event the user can record.
// ID is the calendar event id.
type Meeting struct {
	ID          string        `json:"id" gorm:"type:varchar(255);primary_key"`
	UserID      uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string        `json:"title" gorm:"type:varchar(500)"`
	Description string        `json:"description,omitempty" gorm:"type:text"`
	MeetLink    string        `json:"meet_link,omitempty" gorm:"type:varchar(500)"`
	Status      MeetingStatus `json:"status" gorm:"type:varchar(50);not null;default:'active'"`
	StartTime   *time.Time    `json:"start_time,omitempty" gorm:"type:timestamp"`
	EndTime     *time.Time    `json:"end_time,omitempty" gorm:"type:timestamp"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates an active meeting for a calendar event
func NewMeeting(eventID string, userID uuid.UUID, title string) *Meeting {
	now := time.Now()
	return &Meeting{
		ID:        eventID,
		UserID:    userID,
		Title:     title,
		Status:    MeetingStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewInvitedMeeting creates the invitee's copy of a meeting
func NewInvitedMeeting(eventID string, inviteeID uuid.UUID, title string) *Meeting {
	m := NewMeeting(eventID, inviteeID, title)
	m.Status = MeetingStatusInvited
	return m
}
