package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// NoteRepository stores note collections
type NoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Get returns nil, nil when the meeting has no notes
func (r *NoteRepository) Get(ctx context.Context, meetingID string) (*entities.NoteCollection, error) {
	var n entities.NoteCollection
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}
	return &n, nil
}

// Save upserts the collection
func (r *NoteRepository) Save(ctx context.Context, notes *entities.NoteCollection) error {
	if err := r.db.WithContext(ctx).Save(notes).Error; err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}

// Delete removes the collection row
func (r *NoteRepository) Delete(ctx context.Context, meetingID string) error {
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Delete(&entities.NoteCollection{}).Error; err != nil {
		return fmt.Errorf("failed to delete notes: %w", err)
	}
	return nil
}
