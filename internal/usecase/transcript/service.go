package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/domain/repositories"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/observability"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/storage"
)

// MinMeetingIDLength is the shortest meeting id accepted for writes
const MinMeetingIDLength = 5

// ErrExportUnavailable is returned when no object store is configured
var ErrExportUnavailable = errors.New("transcript export is not configured")

// SummaryEnqueuer schedules summary generation for a completed meeting
type SummaryEnqueuer interface {
	Enqueue(meetingID string) bool
}

// MeetingIndexer refreshes the search document of a meeting
type MeetingIndexer interface {
	Reindex(ctx context.Context, meetingID string) error
}

// ObjectStore is where finished transcripts are exported
type ObjectStore interface {
	UploadText(ctx context.Context, objectName string, content string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// Service owns transcript appends and live fan-out
type Service struct {
	repo    repositories.TranscriptRepository
	hub     cache.Hub
	logger  *zap.Logger
	metrics *observability.Metrics
	locks   *keyedMutex

	queue         SummaryEnqueuer
	indexer       MeetingIndexer
	store         ObjectStore
	presignExpiry time.Duration
}

// NewService creates a transcript service
func NewService(repo repositories.TranscriptRepository, hub cache.Hub, logger *zap.Logger, metrics *observability.Metrics) *Service {
	if metrics == nil {
		metrics = observability.NewNopMetrics()
	}
	return &Service{
		repo:          repo,
		hub:           hub,
		logger:        logger,
		metrics:       metrics,
		locks:         newKeyedMutex(),
		presignExpiry: time.Hour,
	}
}

// SetSummaryQueue registers where completed meetings are handed off
func (s *Service) SetSummaryQueue(q SummaryEnqueuer) { s.queue = q }

// SetIndexer registers the search indexer
func (s *Service) SetIndexer(i MeetingIndexer) { s.indexer = i }

// SetObjectStore enables transcript export
func (s *Service) SetObjectStore(store ObjectStore, presignExpiry time.Duration) {
	s.store = store
	if presignExpiry > 0 {
		s.presignExpiry = presignExpiry
	}
}

// ValidateMeetingID rejects ids too short to be calendar event ids
func ValidateMeetingID(meetingID string) error {
	if len(strings.TrimSpace(meetingID)) < MinMeetingIDLength {
		return entities.ErrInvalidMeetingID
	}
	return nil
}

// Append adds segments to the end of the stored list and publishes the
// result. Appends for one meeting are serialized within this process only.
func (s *Service) Append(ctx context.Context, meetingID string, segments []entities.TranscriptSegment, isComplete bool) error {
	if err := ValidateMeetingID(meetingID); err != nil {
		return err
	}

	unlock := s.locks.Lock(meetingID)
	doc, err := s.repo.Get(ctx, meetingID)
	if err != nil {
		unlock()
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	if doc == nil {
		doc = entities.NewTranscript(meetingID)
	}
	doc.Segments = append(doc.Segments, segments...)
	doc.IsComplete = isComplete
	doc.LastUpdated = time.Now().UTC()

	if err := s.repo.Save(ctx, doc); err != nil {
		unlock()
		if s.logger != nil {
			s.logger.Error("❌ Failed to save transcript",
				zap.String("meeting_id", meetingID),
				zap.Int("new_segments", len(segments)),
				zap.Error(err),
			)
		}
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	full := []entities.TranscriptSegment(doc.Segments)
	unlock()

	if s.hub != nil {
		if err := s.hub.Publish(ctx, meetingID, full); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to publish transcript update",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
	}

	if isComplete {
		if s.logger != nil {
			s.logger.Info("📝 Transcript completed",
				zap.String("meeting_id", meetingID),
				zap.Int("segments", len(full)),
			)
		}
		go s.onComplete(meetingID, entities.JoinSegments(full))
	}
	return nil
}

// onComplete runs the follow-ups of a finished transcript. Failures are logged only.
func (s *Service) onComplete(meetingID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if s.queue != nil && !s.queue.Enqueue(meetingID) && s.logger != nil {
		s.logger.Warn("⚠️ Summary queue rejected meeting", zap.String("meeting_id", meetingID))
	}

	if s.store != nil {
		if err := s.store.UploadText(ctx, storage.TranscriptObjectKey(meetingID), text); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to export transcript",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
	}

	if s.indexer != nil {
		if err := s.indexer.Reindex(ctx, meetingID); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to index transcript",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
	}
}

// Document returns the stored transcript, or an empty one when absent
func (s *Service) Document(ctx context.Context, meetingID string) (*entities.Transcript, error) {
	doc, err := s.repo.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	if doc == nil {
		return entities.NewTranscript(meetingID), nil
	}
	return doc, nil
}

// Get returns the segments of a meeting, empty when there is no transcript
func (s *Service) Get(ctx context.Context, meetingID string) ([]entities.TranscriptSegment, error) {
	doc, err := s.Document(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return []entities.TranscriptSegment(doc.Segments), nil
}

// Subscribe streams the full segment list of a meeting. The current state is
// delivered first; afterwards only the newest list is kept for slow readers.
func (s *Service) Subscribe(ctx context.Context, meetingID string) (<-chan []entities.TranscriptSegment, func(), error) {
	sub, err := s.hub.Subscribe(ctx, meetingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to transcript: %w", err)
	}

	current, err := s.Get(ctx, meetingID)
	if err != nil {
		sub.Close()
		return nil, nil, err
	}
	sub.Offer(current)

	s.metrics.LiveSubscribers.Inc()
	var once sync.Once
	return sub.C(), func() {
		once.Do(func() {
			s.metrics.LiveSubscribers.Dec()
			sub.Close()
		})
	}, nil
}

// Export uploads the transcript text and returns a presigned download URL
func (s *Service) Export(ctx context.Context, meetingID string) (string, error) {
	if s.store == nil {
		return "", ErrExportUnavailable
	}
	doc, err := s.Document(ctx, meetingID)
	if err != nil {
		return "", err
	}

	key := storage.TranscriptObjectKey(meetingID)
	if err := s.store.UploadText(ctx, key, doc.Text()); err != nil {
		return "", fmt.Errorf("failed to export transcript: %w", err)
	}
	url, err := s.store.GetFileURL(ctx, key, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign transcript: %w", err)
	}
	return url, nil
}
