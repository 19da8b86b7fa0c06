package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// InvitationRepository stores meeting invitations
type InvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create inserts an invitation
func (r *InvitationRepository) Create(ctx context.Context, invitation *entities.Invitation) error {
	if err := r.db.WithContext(ctx).Create(invitation).Error; err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// FindByID finds an invitation by id
func (r *InvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Invitation, error) {
	var inv entities.Invitation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	return &inv, nil
}

// Update saves an invitation
func (r *InvitationRepository) Update(ctx context.Context, invitation *entities.Invitation) error {
	if err := r.db.WithContext(ctx).Save(invitation).Error; err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	return nil
}

// FindForInvitee returns nil, nil when the user holds no invitation for the event
func (r *InvitationRepository) FindForInvitee(ctx context.Context, eventID, inviteeID string) (*entities.Invitation, error) {
	var inv entities.Invitation
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND invitee_id = ?", eventID, inviteeID).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	return &inv, nil
}

// ListPendingByEmail lists pending invitations for an email
func (r *InvitationRepository) ListPendingByEmail(ctx context.Context, email string) ([]*entities.Invitation, error) {
	return r.list(ctx, "invitee_email = ? AND status = ?", email, entities.InvitationPending)
}

// ListAcceptedByInvitee lists invitations the user accepted
func (r *InvitationRepository) ListAcceptedByInvitee(ctx context.Context, inviteeID string) ([]*entities.Invitation, error) {
	return r.list(ctx, "invitee_id = ? AND status = ?", inviteeID, entities.InvitationAccepted)
}

func (r *InvitationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entities.Invitation, error) {
	var invitations []*entities.Invitation
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}
