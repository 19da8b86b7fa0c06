package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// SummaryRepository persists generated summaries
type SummaryRepository interface {
	// Get returns nil, nil when no summary exists
	Get(ctx context.Context, meetingID string) (*entities.Summary, error)

	// SaveIfInvalid stores summary unless a valid one is already stored.
	// It reports whether the row was written.
	SaveIfInvalid(ctx context.Context, summary *entities.Summary) (bool, error)
}

// ChatRepository persists chat logs
type ChatRepository interface {
	// Get returns nil, nil when no chat exists
	Get(ctx context.Context, meetingID string) (*entities.ChatLog, error)
	Save(ctx context.Context, chat *entities.ChatLog) error
}
