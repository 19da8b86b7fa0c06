package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// SummaryRepository stores meeting summaries
type SummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Get returns nil, nil when no summary exists
func (r *SummaryRepository) Get(ctx context.Context, meetingID string) (*entities.Summary, error) {
	var s entities.Summary
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return &s, nil
}

// SaveIfInvalid inserts the summary, or overwrites a stored one that is empty
// or starts with the invalid prefix. A valid stored summary is left untouched.
func (r *SummaryRepository) SaveIfInvalid(ctx context.Context, summary *entities.Summary) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"summary_id", "summary", "action_items", "insights", "last_updated",
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{
					SQL:  "summaries.summary = '' OR summaries.summary LIKE ?",
					Vars: []interface{}{entities.InvalidSummaryPrefix + "%"},
				},
			}},
		}).
		Create(summary)
	if result.Error != nil {
		return false, fmt.Errorf("failed to save summary: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ChatRepository stores chat logs
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Get returns nil, nil when no chat exists
func (r *ChatRepository) Get(ctx context.Context, meetingID string) (*entities.ChatLog, error) {
	var c entities.ChatLog
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &c, nil
}

// Save upserts the chat log
func (r *ChatRepository) Save(ctx context.Context, chat *entities.ChatLog) error {
	if err := r.db.WithContext(ctx).Save(chat).Error; err != nil {
		return fmt.Errorf("failed to save chat: %w", err)
	}
	return nil
}
