package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// NoteRepository persists note collections
type NoteRepository interface {
	// Get returns nil, nil when the meeting has no notes
	Get(ctx context.Context, meetingID string) (*entities.NoteCollection, error)
	Save(ctx context.Context, notes *entities.NoteCollection) error
	Delete(ctx context.Context, meetingID string) error
}
