package ai

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/domain/repositories"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/observability"
	pkgai "github.com/johnquangdev/meeting-copilot/pkg/ai"
	"github.com/johnquangdev/meeting-copilot/pkg/jobcontext"
)

// Placeholder content stored or returned when the model cannot help
const (
	EmptyFallbackSummary  = "Fallback summary generated, but was empty."
	FailedSummary         = "Failed to generate structured summary."
	FailedActionItems     = "Failed to extract action items."
	UnavailableActionItem = "AI unavailable."
	CouldNotAnalyze       = "Could not analyze"
	UnavailableInsight    = "AI unavailable"
	UnableToAnswer        = "Unable to answer the question."
	UnavailableCleanup    = "AI unavailable."
	FailedCleanup         = "Failed to clean this segment."
	EmptyCleanup          = "No meaningful content found."
)

// SummaryLockTTL bounds how long one generation run may hold a meeting
const SummaryLockTTL = 10 * time.Minute

// SummaryOutcome tells what GenerateSummaryWithInsights did
type SummaryOutcome string

const (
	OutcomeDisabled        SummaryOutcome = "disabled"
	OutcomeExists          SummaryOutcome = "exists"
	OutcomeEmptyTranscript SummaryOutcome = "empty_transcript"
	OutcomeLocked          SummaryOutcome = "locked"
	OutcomeRejected        SummaryOutcome = "rejected"
	OutcomeGenerated       SummaryOutcome = "generated"
	OutcomeFailed          SummaryOutcome = "failed"
)

// MeetingIndexer refreshes the search document of a meeting
type MeetingIndexer interface {
	Reindex(ctx context.Context, meetingID string) error
}

// Service generates summaries, insights and answers about meetings
type Service interface {
	GenerateSummaryWithInsights(ctx context.Context, meetingID string) (SummaryOutcome, error)
	GetSummary(ctx context.Context, meetingID string) (*entities.Summary, error)

	GenerateSummaryText(ctx context.Context, transcript string) (string, error)
	ExtractActionItems(ctx context.Context, transcript string) []string
	AnalyzeInsights(ctx context.Context, transcript string) entities.Insights

	Ask(ctx context.Context, meetingID, question string) (*entities.ChatEntry, error)
	GetChat(ctx context.Context, meetingID string) ([]entities.ChatEntry, error)
	ClearChat(ctx context.Context, meetingID string) error
	CleanTranscriptChunk(ctx context.Context, text string) string

	Enabled() bool
	SetIndexer(indexer MeetingIndexer)

	// Summary queue
	Enqueue(meetingID string) bool
	StartWorkerPool(ctx context.Context, workerCount int) error
	StopWorkerPool() error
}

type aiService struct {
	generator      pkgai.TextGenerator
	transcriptRepo repositories.TranscriptRepository
	summaryRepo    repositories.SummaryRepository
	chatRepo       repositories.ChatRepository
	locker         *cache.Locker
	indexer        MeetingIndexer
	logger         *zap.Logger
	metrics        *observability.Metrics
	now            func() time.Time

	chatMutex sync.Mutex

	// Worker pool
	jobs                chan string
	pending             map[string]bool
	pendingMutex        sync.Mutex
	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewAIService creates the AI service. A nil generator disables every model call.
// A nil locker leaves concurrent runs to the conditional save.
func NewAIService(
	generator pkgai.TextGenerator,
	transcriptRepo repositories.TranscriptRepository,
	summaryRepo repositories.SummaryRepository,
	chatRepo repositories.ChatRepository,
	locker *cache.Locker,
	logger *zap.Logger,
	metrics *observability.Metrics,
) Service {
	if metrics == nil {
		metrics = observability.NewNopMetrics()
	}
	return &aiService{
		generator:           generator,
		transcriptRepo:      transcriptRepo,
		summaryRepo:         summaryRepo,
		chatRepo:            chatRepo,
		locker:              locker,
		logger:              logger,
		metrics:             metrics,
		now:                 time.Now,
		jobs:                make(chan string, summaryQueueSize),
		pending:             make(map[string]bool),
		isWorkerPoolRunning: false,
	}
}

func (s *aiService) Enabled() bool { return s.generator != nil }

func (s *aiService) SetIndexer(indexer MeetingIndexer) { s.indexer = indexer }

// GenerateSummaryWithInsights builds and stores the summary of a meeting once.
// It does nothing when a valid summary exists or the transcript is empty.
func (s *aiService) GenerateSummaryWithInsights(ctx context.Context, meetingID string) (outcome SummaryOutcome, err error) {
	defer func() {
		s.metrics.SummariesTotal.WithLabelValues(string(outcome)).Inc()
	}()

	if !s.Enabled() {
		return OutcomeDisabled, nil
	}

	existing, err := s.summaryRepo.Get(ctx, meetingID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to get summary: %w", err)
	}
	if existing.IsValid() {
		return OutcomeExists, nil
	}

	transcript, err := s.transcriptRepo.Get(ctx, meetingID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to get transcript: %w", err)
	}
	text := strings.TrimSpace(transcript.Text())
	if text == "" {
		if s.logger != nil {
			s.logger.Info("⏭️ Transcript empty, summary skipped",
				zap.String("meeting_id", meetingID),
			)
		}
		return OutcomeEmptyTranscript, nil
	}

	if s.locker != nil {
		release, ok, lockErr := s.locker.TryLock(ctx, "summary:"+meetingID, SummaryLockTTL)
		switch {
		case lockErr != nil:
			if s.logger != nil {
				s.logger.Warn("⚠️ Summary lock unavailable, relying on conditional save",
					zap.String("meeting_id", meetingID),
					zap.Error(lockErr),
				)
			}
		case !ok:
			if s.logger != nil {
				s.logger.Info("⏭️ Summary already being generated",
					zap.String("meeting_id", meetingID),
				)
			}
			return OutcomeLocked, nil
		default:
			defer release()
		}

		// another run may have finished between the first check and the lock
		existing, err = s.summaryRepo.Get(ctx, meetingID)
		if err != nil {
			return OutcomeFailed, fmt.Errorf("failed to get summary: %w", err)
		}
		if existing.IsValid() {
			return OutcomeExists, nil
		}
	}

	if s.logger != nil {
		s.logger.Info("🤖 Generating summary",
			zap.String("meeting_id", meetingID),
			zap.Int("transcript_length", len(text)),
		)
	}

	summaryText, err := s.GenerateSummaryText(ctx, text)
	if err != nil {
		if retryable(ctx, err) {
			return OutcomeFailed, err
		}
		summaryText = FailedSummary
	}
	actionItems := s.ExtractActionItems(ctx, text)
	insights := s.AnalyzeInsights(ctx, text)

	if !entities.IsValidSummaryText(summaryText) {
		if s.logger != nil {
			s.logger.Warn("⚠️ Model asked for input instead of summarizing, not saved",
				zap.String("meeting_id", meetingID),
			)
		}
		return OutcomeRejected, nil
	}

	summary := entities.NewSummary(meetingID, summaryText, actionItems, insights, s.now().UTC())
	saved, err := s.summaryRepo.SaveIfInvalid(ctx, summary)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to save summary",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
		return OutcomeFailed, fmt.Errorf("failed to save summary: %w", err)
	}
	if !saved {
		return OutcomeExists, nil
	}

	if s.indexer != nil {
		if err := s.indexer.Reindex(ctx, meetingID); err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Failed to index summary",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("✅ Summary saved",
			zap.String("meeting_id", meetingID),
			zap.String("summary_id", summary.SummaryID),
			zap.Int("action_items", len(actionItems)),
			zap.String("sentiment", string(insights.Sentiment)),
		)
	}
	return OutcomeGenerated, nil
}

// retryable reports whether a queued job should retry instead of storing a placeholder.
// Direct calls never retry.
func retryable(ctx context.Context, err error) bool {
	if _, inJob := jobcontext.GetJobID(ctx); !inJob {
		return false
	}
	if jobcontext.GetRetryAttempt(ctx) >= jobcontext.GetMaxRetries(ctx)-1 {
		return false
	}
	return jobcontext.IsRetryableError(err) || pkgai.IsQuotaError(err)
}

func (s *aiService) GetSummary(ctx context.Context, meetingID string) (*entities.Summary, error) {
	summary, err := s.summaryRepo.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return summary, nil
}

// GenerateSummaryText asks for a structured summary and falls back to a plain
// bullet summary when the reply is unusable. The error is the fallback call's.
func (s *aiService) GenerateSummaryText(ctx context.Context, transcript string) (string, error) {
	if !s.Enabled() {
		return "", entities.ErrAIDisabled
	}

	raw, err := s.generate(ctx, "summary", summaryPrompt(transcript), structuredOptions)
	if err == nil {
		structured, decodeErr := DecodeStructuredSummary(raw)
		if decodeErr == nil {
			return structured.Summary, nil
		}
		err = decodeErr
	}

	if s.logger != nil {
		s.logger.Warn("⚠️ Structured summary unusable, trying fallback",
			zap.Bool("malformed", stdErrors.Is(err, ErrMalformedResponse)),
			zap.Error(err),
		)
	}

	reply, err := s.generate(ctx, "summary_fallback", fallbackSummaryPrompt(transcript), plainOptions)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Fallback summary failed", zap.Error(err))
		}
		return FailedSummary, err
	}
	text := StripMarkdown(reply)
	if text == "" {
		return EmptyFallbackSummary, nil
	}
	return text, nil
}

func (s *aiService) ExtractActionItems(ctx context.Context, transcript string) []string {
	if !s.Enabled() {
		return []string{UnavailableActionItem}
	}
	reply, err := s.generate(ctx, "action_items", actionItemsPrompt(transcript), plainOptions)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Action item extraction failed", zap.Error(err))
		}
		return []string{FailedActionItems}
	}
	return ParseActionItems(reply)
}

func (s *aiService) AnalyzeInsights(ctx context.Context, transcript string) entities.Insights {
	if !s.Enabled() {
		return placeholderInsights(UnavailableInsight)
	}
	reply, err := s.generate(ctx, "insights", insightsPrompt(transcript), insightsOptions)
	if err == nil {
		insights, decodeErr := DecodeInsights(reply)
		if decodeErr == nil {
			return insights
		}
		err = decodeErr
	}
	if s.logger != nil {
		s.logger.Warn("⚠️ Insight analysis failed", zap.Error(err))
	}
	return placeholderInsights(CouldNotAnalyze)
}

func placeholderInsights(reason string) entities.Insights {
	return entities.Insights{
		Sentiment: entities.SentimentNeutral,
		KeyTopics: []string{reason},
		Decisions: []string{reason},
	}
}

// Ask answers a question from the transcript and records the exchange
func (s *aiService) Ask(ctx context.Context, meetingID, question string) (*entities.ChatEntry, error) {
	if !s.Enabled() {
		return nil, entities.ErrAIDisabled
	}

	transcript, err := s.transcriptRepo.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	var segments []entities.TranscriptSegment
	if transcript != nil {
		segments = transcript.Segments
	}

	answer, err := s.generate(ctx, "chat", chatPrompt(segments, question), plainOptions)
	answer = strings.TrimSpace(answer)
	if err != nil || answer == "" {
		if err != nil && s.logger != nil {
			s.logger.Warn("⚠️ Chat answer failed",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
		answer = UnableToAnswer
	}

	entry := entities.ChatEntry{Q: question, A: answer}

	s.chatMutex.Lock()
	defer s.chatMutex.Unlock()

	chat, err := s.chatRepo.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if chat == nil {
		chat = &entities.ChatLog{MeetingID: meetingID}
	}
	chat.Chat = append(chat.Chat, entry)
	chat.LastUpdated = s.now().UTC()
	if err := s.chatRepo.Save(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}
	return &entry, nil
}

func (s *aiService) GetChat(ctx context.Context, meetingID string) ([]entities.ChatEntry, error) {
	chat, err := s.chatRepo.Get(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if chat == nil {
		return []entities.ChatEntry{}, nil
	}
	return chat.Chat, nil
}

// ClearChat overwrites the log with an empty list
func (s *aiService) ClearChat(ctx context.Context, meetingID string) error {
	s.chatMutex.Lock()
	defer s.chatMutex.Unlock()

	chat := &entities.ChatLog{
		MeetingID:   meetingID,
		Chat:        []entities.ChatEntry{},
		LastUpdated: s.now().UTC(),
	}
	if err := s.chatRepo.Save(ctx, chat); err != nil {
		return fmt.Errorf("failed to clear chat: %w", err)
	}
	return nil
}

func (s *aiService) CleanTranscriptChunk(ctx context.Context, text string) string {
	if !s.Enabled() {
		return UnavailableCleanup
	}
	reply, err := s.generate(ctx, "clean", cleanPrompt(text), plainOptions)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Segment cleanup failed", zap.Error(err))
		}
		return FailedCleanup
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return EmptyCleanup
	}
	return reply
}

func (s *aiService) generate(ctx context.Context, operation, prompt string, opts pkgai.GenerateOptions) (string, error) {
	start := time.Now()
	reply, err := s.generator.Generate(ctx, prompt, opts)
	s.metrics.AILatencySeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
		if pkgai.IsQuotaError(err) {
			status = "quota"
		}
	}
	s.metrics.AIRequestsTotal.WithLabelValues(operation, status).Inc()
	return reply, err
}
