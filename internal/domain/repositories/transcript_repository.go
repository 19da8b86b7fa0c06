package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// TranscriptRepository persists transcript documents
type TranscriptRepository interface {
	// Get returns nil, nil when no transcript exists
	Get(ctx context.Context, meetingID string) (*entities.Transcript, error)

	// Save writes the whole document
	Save(ctx context.Context, transcript *entities.Transcript) error
}
