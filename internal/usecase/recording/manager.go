package recording

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/domain/repositories"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/observability"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-copilot/pkg/ai"
	"github.com/johnquangdev/meeting-copilot/pkg/audio"
	"github.com/johnquangdev/meeting-copilot/pkg/config"
	"go.uber.org/zap"
)

// TranscriptAppender persists transcribed segments
type TranscriptAppender interface {
	Append(ctx context.Context, meetingID string, segments []entities.TranscriptSegment, isComplete bool) error
}

// ChunkArchive stores raw chunk audio
type ChunkArchive interface {
	UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error
}

// defaultStopTimeout bounds how long StopSession waits for pending chunks
const defaultStopTimeout = 60 * time.Second

// StartOptions are the per-session choices made by the client
type StartOptions struct {
	Capabilities Capabilities
}

// ManagerConfig wires a Manager
type ManagerConfig struct {
	Capture  config.CaptureConfig
	Provider string
	Clock    clock.Clock
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

type session struct {
	meetingID string
	userID    uuid.UUID
	pipeline  *Pipeline
	devices   IngestDevices
	startedAt time.Time
	// completed is set once the transcript was marked complete; late
	// segments keep the flag
	completed atomic.Bool
}

// SessionInfo describes a running recording
type SessionInfo struct {
	MeetingID string    `json:"meeting_id"`
	UserID    uuid.UUID `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
}

// Manager keeps one pipeline per meeting being recorded
type Manager struct {
	transcriber ai.Transcriber
	transcripts TranscriptAppender
	meetings    repositories.MeetingRepository
	archive     ChunkArchive
	newDevices  IngestFactory
	cfg         ManagerConfig

	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager creates a session manager. archive may be nil.
func NewManager(
	transcriber ai.Transcriber,
	transcripts TranscriptAppender,
	meetings repositories.MeetingRepository,
	archive ChunkArchive,
	newDevices IngestFactory,
	cfg ManagerConfig,
) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewNopMetrics()
	}
	if cfg.Capture.StopTimeout <= 0 {
		cfg.Capture.StopTimeout = defaultStopTimeout
	}
	return &Manager{
		transcriber: transcriber,
		transcripts: transcripts,
		meetings:    meetings,
		archive:     archive,
		newDevices:  newDevices,
		cfg:         cfg,
		sessions:    make(map[string]*session),
	}
}

// StartSession begins recording a meeting and marks it in progress
func (m *Manager) StartSession(ctx context.Context, meetingID string, userID uuid.UUID, opts StartOptions) error {
	meeting, err := m.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to load meeting: %w", err)
	}
	if meeting == nil {
		return entities.ErrMeetingNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[meetingID]; ok {
		return entities.ErrAlreadyRecording
	}

	devices := m.newDevices(opts.Capabilities)
	pipeline := NewPipeline(devices, m.transcriber, m.pipelineConfig(meetingID))
	s := &session{
		meetingID: meetingID,
		userID:    userID,
		pipeline:  pipeline,
		devices:   devices,
	}

	onSegments := func(segs []entities.TranscriptSegment) {
		if err := m.transcripts.Append(context.Background(), meetingID, segs, s.completed.Load()); err != nil && m.cfg.Logger != nil {
			m.cfg.Logger.Error("❌ Failed to append transcript segment",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
	}
	if err := pipeline.Start(ctx, onSegments); err != nil {
		return err
	}

	if err := m.meetings.UpdateStatus(ctx, meetingID, entities.MeetingStatusInProgress); err != nil {
		pipeline.Stop()
		return fmt.Errorf("failed to mark meeting in progress: %w", err)
	}

	s.startedAt = m.cfg.Clock.Now()
	m.sessions[meetingID] = s
	m.cfg.Metrics.ActiveRecordings.Inc()

	if m.cfg.Logger != nil {
		m.cfg.Logger.Info("🔴 Recording session started",
			zap.String("meeting_id", meetingID),
			zap.String("user_id", userID.String()),
		)
	}
	return nil
}

func (m *Manager) pipelineConfig(meetingID string) PipelineConfig {
	pc := PipelineConfig{
		ChunkInterval: m.cfg.Capture.ChunkInterval,
		MinChunkBytes: m.cfg.Capture.MinChunkBytes,
		Format:        audio.Format{SampleRate: m.cfg.Capture.SampleRate, Channels: 1, BitsPerSample: 16},
		Provider:      m.cfg.Provider,
		Clock:         m.cfg.Clock,
		Metrics:       m.cfg.Metrics,
	}
	if m.cfg.Logger != nil {
		pc.Logger = m.cfg.Logger.With(zap.String("meeting_id", meetingID))
	}
	if m.archive != nil && m.cfg.Capture.ArchiveChunks {
		pc.OnChunk = func(ctx context.Context, index int, wav []byte) {
			key := storage.ChunkObjectKey(meetingID, index)
			if err := m.archive.UploadBytes(ctx, key, wav, audio.MimeWAV); err != nil && m.cfg.Logger != nil {
				m.cfg.Logger.Warn("⚠️ Failed to archive chunk",
					zap.String("meeting_id", meetingID),
					zap.Int("chunk", index),
					zap.Error(err),
				)
			}
		}
	}
	return pc
}

// StopSession stops recording, waits for pending chunks, marks the
// transcript complete and the meeting completed. The wait outlives ctx
// and is bounded by the capture stop timeout.
func (m *Manager) StopSession(ctx context.Context, meetingID string) error {
	m.mu.Lock()
	s, ok := m.sessions[meetingID]
	if ok {
		delete(m.sessions, meetingID)
	}
	m.mu.Unlock()
	if !ok {
		return entities.ErrNotRecording
	}

	s.pipeline.Stop()
	m.cfg.Metrics.ActiveRecordings.Dec()

	ctx = context.WithoutCancel(ctx)
	waitCtx, cancel := m.cfg.Clock.WithTimeout(ctx, m.cfg.Capture.StopTimeout)
	err := s.pipeline.Wait(waitCtx)
	cancel()
	if err != nil && m.cfg.Logger != nil {
		m.cfg.Logger.Warn("⚠️ Gave up waiting for pending chunks",
			zap.String("meeting_id", meetingID),
			zap.Error(err),
		)
	}

	s.completed.Store(true)
	if err := m.transcripts.Append(ctx, meetingID, []entities.TranscriptSegment{}, true); err != nil {
		return fmt.Errorf("failed to complete transcript: %w", err)
	}
	if err := m.meetings.UpdateStatus(ctx, meetingID, entities.MeetingStatusCompleted); err != nil {
		return fmt.Errorf("failed to mark meeting completed: %w", err)
	}

	if m.cfg.Logger != nil {
		m.cfg.Logger.Info("✅ Recording session completed",
			zap.String("meeting_id", meetingID),
			zap.Duration("duration", m.cfg.Clock.Since(s.startedAt)),
		)
	}
	return nil
}

// PushAudio feeds PCM frames to a running session's ingest track
func (m *Manager) PushAudio(meetingID string, kind TrackKind, pcm []byte) error {
	m.mu.Lock()
	s, ok := m.sessions[meetingID]
	m.mu.Unlock()
	if !ok {
		return entities.ErrNotRecording
	}
	return s.devices.Push(kind, pcm)
}

// Session returns the running session for a meeting
func (m *Manager) Session(meetingID string) (SessionInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[meetingID]
	if !ok {
		return SessionInfo{}, false
	}
	return SessionInfo{MeetingID: s.meetingID, UserID: s.userID, StartedAt: s.startedAt}, true
}

// Shutdown stops every running session
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := m.StopSession(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
