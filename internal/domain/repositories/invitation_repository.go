package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// InvitationRepository persists meeting invitations
type InvitationRepository interface {
	Create(ctx context.Context, invitation *entities.Invitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Invitation, error)
	Update(ctx context.Context, invitation *entities.Invitation) error

	// FindForInvitee returns the invitation for eventID held by inviteeID, or nil
	FindForInvitee(ctx context.Context, eventID, inviteeID string) (*entities.Invitation, error)

	ListPendingByEmail(ctx context.Context, email string) ([]*entities.Invitation, error)
	ListAcceptedByInvitee(ctx context.Context, inviteeID string) ([]*entities.Invitation, error)
}
