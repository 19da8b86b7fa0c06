package invitation

// CreateInvitationRequest invites someone to a meeting by email
type CreateInvitationRequest struct {
	EventID string `json:"event_id" validate:"required,meetingid"`
	Email   string `json:"email" validate:"required,email"`
}
