// Package memories indexes finished meetings and searches them per user.
package memories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/domain/repositories"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/search"
)

const defaultMaxHits = 20

// SearchIndex is the full-text index of meetings
type SearchIndex interface {
	IndexMeeting(ctx context.Context, doc search.MeetingDocument) error
	Search(ctx context.Context, userID, text string, limit int) ([]search.Hit, error)
}

// Memory is one search result
type Memory struct {
	Meeting *entities.Meeting `json:"meeting"`
	Summary string            `json:"summary,omitempty"`
	Score   float64           `json:"score"`
}

// Service keeps the index in sync with stored meetings
type Service struct {
	index          SearchIndex
	meetingRepo    repositories.MeetingRepository
	transcriptRepo repositories.TranscriptRepository
	summaryRepo    repositories.SummaryRepository
	maxHits        int
	logger         *zap.Logger
}

// NewService creates a memories service
func NewService(
	index SearchIndex,
	meetingRepo repositories.MeetingRepository,
	transcriptRepo repositories.TranscriptRepository,
	summaryRepo repositories.SummaryRepository,
	maxHits int,
	logger *zap.Logger,
) *Service {
	if maxHits <= 0 {
		maxHits = defaultMaxHits
	}
	return &Service{
		index:          index,
		meetingRepo:    meetingRepo,
		transcriptRepo: transcriptRepo,
		summaryRepo:    summaryRepo,
		maxHits:        maxHits,
		logger:         logger,
	}
}

// Reindex rebuilds the document of one meeting from its title, summary and transcript.
// Meetings that are not stored are skipped.
func (s *Service) Reindex(ctx context.Context, meetingID string) error {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to get meeting: %w", err)
	}
	if meeting == nil {
		if s.logger != nil {
			s.logger.Debug("Meeting not stored, not indexed", zap.String("meeting_id", meetingID))
		}
		return nil
	}

	transcript, err := s.transcriptRepo.Get(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to get transcript: %w", err)
	}
	summary, err := s.summaryRepo.Get(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to get summary: %w", err)
	}

	doc := search.MeetingDocument{
		MeetingID:  meetingID,
		UserID:     meeting.UserID.String(),
		Title:      meeting.Title,
		Transcript: transcript.Text(),
	}
	if summary.IsValid() {
		doc.Summary = summary.Summary
	}

	if err := s.index.IndexMeeting(ctx, doc); err != nil {
		return fmt.Errorf("failed to index meeting: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("🔎 Meeting indexed",
			zap.String("meeting_id", meetingID),
			zap.Bool("has_summary", doc.Summary != ""),
		)
	}
	return nil
}

// Search returns the caller's meetings matching text, best match first
func (s *Service) Search(ctx context.Context, userID uuid.UUID, text string) ([]Memory, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Memory{}, nil
	}

	hits, err := s.index.Search(ctx, userID.String(), text, s.maxHits)
	if err != nil {
		return nil, fmt.Errorf("failed to search meetings: %w", err)
	}
	if len(hits) == 0 {
		return []Memory{}, nil
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.MeetingID)
	}
	meetings, err := s.meetingRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load meetings: %w", err)
	}
	byID := make(map[string]*entities.Meeting, len(meetings))
	for _, m := range meetings {
		byID[m.ID] = m
	}

	out := make([]Memory, 0, len(hits))
	for _, h := range hits {
		m, ok := byID[h.MeetingID]
		if !ok || m.UserID != userID {
			continue
		}
		mem := Memory{Meeting: m, Score: h.Score}
		if summary, err := s.summaryRepo.Get(ctx, m.ID); err == nil && summary.IsValid() {
			mem.Summary = summary.Summary
		}
		out = append(out, mem)
	}
	return out, nil
}
