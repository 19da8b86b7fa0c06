package invitation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/domain/repositories"
)

// Service manages meeting invitations
type Service struct {
	invitationRepo repositories.InvitationRepository
	meetingRepo    repositories.MeetingRepository
	logger         *zap.Logger
}

// NewService creates an invitation service
func NewService(invitationRepo repositories.InvitationRepository, meetingRepo repositories.MeetingRepository, logger *zap.Logger) *Service {
	return &Service{
		invitationRepo: invitationRepo,
		meetingRepo:    meetingRepo,
		logger:         logger,
	}
}

// Create invites inviteeEmail to eventID. Only the meeting's owner may
// invite; the title is copied from the meeting.
func (s *Service) Create(ctx context.Context, organizerID uuid.UUID, eventID, inviteeEmail string) (*entities.Invitation, error) {
	inviteeEmail = strings.TrimSpace(inviteeEmail)
	if inviteeEmail == "" {
		return nil, entities.ErrInvalidEmail
	}

	meeting, err := s.meetingRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	if meeting == nil {
		return nil, entities.ErrMeetingNotFound
	}
	if meeting.UserID != organizerID {
		if s.logger != nil {
			s.logger.Warn("⚠️ Invitation refused, caller does not own the meeting",
				zap.String("event_id", eventID),
				zap.String("user_id", organizerID.String()),
			)
		}
		return nil, entities.ErrForbidden
	}

	inv := entities.NewInvitation(eventID, organizerID, inviteeEmail, meeting.Title)
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("📨 Invitation created",
			zap.String("invitation_id", inv.ID.String()),
			zap.String("event_id", eventID),
			zap.String("invitee_email", inviteeEmail),
		)
	}
	return inv, nil
}

// Accept records invitee on the invitation. Only the addressed email may
// accept. Accepting twice is a no-op.
func (s *Service) Accept(ctx context.Context, id uuid.UUID, invitee *entities.User) (*entities.Invitation, error) {
	inv, err := s.findFor(ctx, id, invitee)
	if err != nil {
		return nil, err
	}
	inviteeID := invitee.ID.String()
	if inv.Status == entities.InvitationAccepted && inv.InviteeID == inviteeID {
		return inv, nil
	}

	inv.Accept(inviteeID)
	if err := s.invitationRepo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}
	return inv, nil
}

// Decline marks the invitation declined. Only the addressed email may decline.
func (s *Service) Decline(ctx context.Context, id uuid.UUID, invitee *entities.User) (*entities.Invitation, error) {
	inv, err := s.findFor(ctx, id, invitee)
	if err != nil {
		return nil, err
	}
	if inv.Status == entities.InvitationDeclined {
		return inv, nil
	}

	inv.Decline()
	if err := s.invitationRepo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to decline invitation: %w", err)
	}
	return inv, nil
}

// Pending lists open invitations sent to email
func (s *Service) Pending(ctx context.Context, email string) ([]*entities.Invitation, error) {
	invs, err := s.invitationRepo.ListPendingByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	return invs, nil
}

// Accepted lists invitations accepted by inviteeID
func (s *Service) Accepted(ctx context.Context, inviteeID string) ([]*entities.Invitation, error) {
	invs, err := s.invitationRepo.ListAcceptedByInvitee(ctx, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted invitations: %w", err)
	}
	return invs, nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*entities.Invitation, error) {
	inv, err := s.invitationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if inv == nil {
		return nil, entities.ErrInvitationNotFound
	}
	return inv, nil
}

// findFor loads the invitation and checks it is addressed to user
func (s *Service) findFor(ctx context.Context, id uuid.UUID, user *entities.User) (*entities.Invitation, error) {
	if user == nil {
		return nil, entities.ErrUnauthorized
	}
	inv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(inv.InviteeEmail), strings.TrimSpace(user.Email)) {
		return nil, entities.ErrForbidden
	}
	return inv, nil
}
