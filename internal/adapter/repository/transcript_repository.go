package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// TranscriptRepository stores transcript documents
type TranscriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Get returns nil, nil when no transcript exists
func (r *TranscriptRepository) Get(ctx context.Context, meetingID string) (*entities.Transcript, error) {
	var t entities.Transcript
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	return &t, nil
}

// Save upserts the full document
func (r *TranscriptRepository) Save(ctx context.Context, transcript *entities.Transcript) error {
	if err := r.db.WithContext(ctx).Save(transcript).Error; err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	return nil
}
