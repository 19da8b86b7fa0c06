package entities

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the state of an invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation lets another user join a meeting's workspace
type Invitation struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID      string           `json:"event_id" gorm:"type:varchar(255);not null;index"`
	OrganizerID  uuid.UUID        `json:"organizer_id" gorm:"type:uuid;not null;index"`
	InviteeEmail string           `json:"invitee_email" gorm:"type:varchar(255);not null;index"`
	InviteeID    string           `json:"invitee_id" gorm:"type:varchar(255);not null;default:'';index"`
	MeetingTitle string           `json:"meeting_title" gorm:"type:varchar(500)"`
	Status       InvitationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt    time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Invitation) TableName() string {
	return "meeting_invitations"
}

// NewInvitation creates a pending invitation
func NewInvitation(eventID string, organizerID uuid.UUID, inviteeEmail, title string) *Invitation {
	now := time.Now()
	return &Invitation{
		ID:           uuid.New(),
		EventID:      eventID,
		OrganizerID:  organizerID,
		InviteeEmail: inviteeEmail,
		MeetingTitle: title,
		Status:       InvitationPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Accept marks the invitation accepted by inviteeID
func (i *Invitation) Accept(inviteeID string) {
	i.InviteeID = inviteeID
	i.Status = InvitationAccepted
	i.UpdatedAt = time.Now()
}

// Decline marks the invitation declined
func (i *Invitation) Decline() {
	i.Status = InvitationDeclined
	i.UpdatedAt = time.Now()
}
