package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// MeetingRepository persists meetings keyed by calendar event id
type MeetingRepository interface {
	// Create inserts a meeting, returns false if the id already exists
	Create(ctx context.Context, meeting *entities.Meeting) (bool, error)

	// FindByID returns nil, nil when the meeting does not exist
	FindByID(ctx context.Context, id string) (*entities.Meeting, error)

	// ExistingIDs returns which of ids are already stored
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Meeting, error)
	FindByIDs(ctx context.Context, ids []string) ([]*entities.Meeting, error)
	UpdateStatus(ctx context.Context, id string, status entities.MeetingStatus) error
}
