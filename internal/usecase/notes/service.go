package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/domain/repositories"
)

// ErrEmptyContent is returned for blank notes
var ErrEmptyContent = errors.New("note content is empty")

// Service manages the notes of a meeting
type Service struct {
	repo   repositories.NoteRepository
	clock  clock.Clock
	logger *zap.Logger

	// read-modify-write of one collection row
	mu sync.Mutex
}

// NewService creates a notes service
func NewService(repo repositories.NoteRepository, clk clock.Clock, logger *zap.Logger) *Service {
	if clk == nil {
		clk = clock.New()
	}
	return &Service{repo: repo, clock: clk, logger: logger}
}

// Add stores a new note, creating the collection on first use
func (s *Service) Add(ctx context.Context, meetingID, content string) (*entities.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	note := entities.Note{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	notes[note.ID] = note

	if err := s.save(ctx, meetingID, notes, now); err != nil {
		return nil, err
	}
	return &note, nil
}

// List returns notes ordered by creation time
func (s *Service) List(ctx context.Context, meetingID string) ([]entities.Note, error) {
	c, err := s.repo.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}
	return c.Sorted(), nil
}

// Update replaces the content of an existing note
func (s *Service) Update(ctx context.Context, meetingID, noteID, content string) (*entities.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	note, ok := notes[noteID]
	if !ok {
		return nil, entities.ErrNoteNotFound
	}

	now := s.clock.Now().UTC()
	note.ID = noteID
	note.Content = content
	note.UpdatedAt = now
	notes[noteID] = note

	if err := s.save(ctx, meetingID, notes, now); err != nil {
		return nil, err
	}
	return &note, nil
}

// Delete removes a note. The collection row goes away with its last note.
func (s *Service) Delete(ctx context.Context, meetingID, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load(ctx, meetingID)
	if err != nil {
		return err
	}
	if _, ok := notes[noteID]; !ok {
		return entities.ErrNoteNotFound
	}
	delete(notes, noteID)

	if len(notes) == 0 {
		if err := s.repo.Delete(ctx, meetingID); err != nil {
			return fmt.Errorf("failed to delete notes: %w", err)
		}
		if s.logger != nil {
			s.logger.Info("🗑️ Last note removed, collection deleted",
				zap.String("meeting_id", meetingID),
			)
		}
		return nil
	}
	return s.save(ctx, meetingID, notes, s.clock.Now().UTC())
}

func (s *Service) load(ctx context.Context, meetingID string) (map[string]entities.Note, error) {
	c, err := s.repo.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}
	notes := make(map[string]entities.Note)
	if c != nil {
		for id, n := range c.Notes.Data() {
			notes[id] = n
		}
	}
	return notes, nil
}

func (s *Service) save(ctx context.Context, meetingID string, notes map[string]entities.Note, at time.Time) error {
	c := &entities.NoteCollection{
		MeetingID: meetingID,
		Notes:     datatypes.NewJSONType(notes),
		UpdatedAt: at,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to save notes",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}
