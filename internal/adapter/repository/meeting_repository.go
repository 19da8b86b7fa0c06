package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// MeetingRepository stores meetings in PostgreSQL
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts the meeting unless its id is already taken
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(meeting)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create meeting: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// FindByID returns nil, nil when the meeting does not exist
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	return &meeting, nil
}

// ExistingIDs returns the subset of ids already stored
func (r *MeetingRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	var found []string
	if err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to check meetings: %w", err)
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// ListByUser returns the user's meetings, newest first
func (r *MeetingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC NULLS LAST, created_at DESC").
		Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// FindByIDs loads meetings by id
func (r *MeetingRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.Meeting, error) {
	var meetings []*entities.Meeting
	if len(ids) == 0 {
		return meetings, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&meetings).Error; err != nil {
		return nil, fmt.Errorf("failed to load meetings: %w", err)
	}
	return meetings, nil
}

// UpdateStatus sets the meeting status
func (r *MeetingRepository) UpdateStatus(ctx context.Context, id string, status entities.MeetingStatus) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update meeting status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrMeetingNotFound
	}
	return nil
}
