package recording

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/repository/memory"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/pkg/ai"
	"github.com/johnquangdev/meeting-copilot/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appendCall struct {
	meetingID  string
	segments   []entities.TranscriptSegment
	isComplete bool
}

type recordingAppender struct {
	mu    sync.Mutex
	calls []appendCall
}

func (a *recordingAppender) Append(_ context.Context, meetingID string, segs []entities.TranscriptSegment, isComplete bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, appendCall{meetingID, segs, isComplete})
	return nil
}

func (a *recordingAppender) snapshot() []appendCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]appendCall(nil), a.calls...)
}

type fakeIngest struct {
	*fakeDevices
}

func (f fakeIngest) Push(kind TrackKind, pcm []byte) error {
	if kind == TrackDisplay {
		f.display.write(len(pcm))
	} else {
		f.mic.write(len(pcm))
	}
	return nil
}

type fakeArchive struct {
	mu   sync.Mutex
	keys []string
}

func (a *fakeArchive) UploadBytes(_ context.Context, key string, _ []byte, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, key)
	return nil
}

func newTestManager(t *testing.T, clk clock.Clock, archive ChunkArchive) (*Manager, *memory.MeetingRepository, *recordingAppender) {
	t.Helper()
	return newManagerWith(t, clk, &fakeTranscriber{}, archive, 0)
}

func newManagerWith(t *testing.T, clk clock.Clock, tr ai.Transcriber, archive ChunkArchive, stopTimeout time.Duration) (*Manager, *memory.MeetingRepository, *recordingAppender) {
	t.Helper()
	meetings := memory.NewMeetingRepository()
	appender := &recordingAppender{}
	factory := func(caps Capabilities) IngestDevices {
		return fakeIngest{newFakeDevices()}
	}
	mgr := NewManager(tr, appender, meetings, archive, factory, ManagerConfig{
		Capture: config.CaptureConfig{
			ChunkInterval: 6 * time.Second,
			MinChunkBytes: 8000,
			SampleRate:    16000,
			ArchiveChunks: true,
			StopTimeout:   stopTimeout,
		},
		Provider: "fake",
		Clock:    clk,
	})
	return mgr, meetings, appender
}

// gatedTranscriber holds every call until release is closed
type gatedTranscriber struct {
	started chan struct{}
	release chan struct{}
}

func newGatedTranscriber() *gatedTranscriber {
	return &gatedTranscriber{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gatedTranscriber) Transcribe(context.Context, string, string) (string, error) {
	g.started <- struct{}{}
	<-g.release
	return "late words", nil
}

func waitStarted(t *testing.T, g *gatedTranscriber) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("transcription never started")
	}
}

func recvErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("StopSession did not return")
		return nil
	}
}

func TestManager_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	archive := &fakeArchive{}
	mgr, meetings, appender := newTestManager(t, clk, archive)

	userID := uuid.New()
	_, err := meetings.Create(ctx, entities.NewMeeting("event-123", userID, "Standup"))
	require.NoError(t, err)

	require.NoError(t, mgr.StartSession(ctx, "event-123", userID, StartOptions{}))
	assert.ErrorIs(t, mgr.StartSession(ctx, "event-123", userID, StartOptions{}), entities.ErrAlreadyRecording)

	m, _ := meetings.FindByID(ctx, "event-123")
	assert.Equal(t, entities.MeetingStatusInProgress, m.Status)

	info, ok := mgr.Session("event-123")
	require.True(t, ok)
	assert.Equal(t, userID, info.UserID)

	require.NoError(t, mgr.PushAudio("event-123", TrackMicrophone, make([]byte, 16000)))
	clk.Add(6 * time.Second)
	require.Eventually(t, func() bool { return len(appender.snapshot()) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, mgr.StopSession(ctx, "event-123"))

	calls := appender.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "chunk-0", calls[0].segments[0].Text)
	assert.False(t, calls[0].isComplete)
	assert.Empty(t, calls[1].segments)
	assert.True(t, calls[1].isComplete)

	m, _ = meetings.FindByID(ctx, "event-123")
	assert.Equal(t, entities.MeetingStatusCompleted, m.Status)
	assert.Equal(t, []string{"meetings/event-123/chunks/00000.wav"}, archive.keys)

	_, ok = mgr.Session("event-123")
	assert.False(t, ok)
	assert.ErrorIs(t, mgr.StopSession(ctx, "event-123"), entities.ErrNotRecording)
	assert.ErrorIs(t, mgr.PushAudio("event-123", TrackDisplay, []byte{0, 0}), entities.ErrNotRecording)
}

func TestManager_UnknownMeeting(t *testing.T) {
	mgr, _, _ := newTestManager(t, clock.NewMock(), nil)
	err := mgr.StartSession(context.Background(), "missing-meeting", uuid.New(), StartOptions{})
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)
}

func TestManager_ShutdownCompletesSessions(t *testing.T) {
	ctx := context.Background()
	mgr, meetings, appender := newTestManager(t, clock.NewMock(), nil)

	for _, id := range []string{"event-aaa", "event-bbb"} {
		_, err := meetings.Create(ctx, entities.NewMeeting(id, uuid.New(), id))
		require.NoError(t, err)
		require.NoError(t, mgr.StartSession(ctx, id, uuid.New(), StartOptions{}))
	}

	require.NoError(t, mgr.Shutdown(ctx))

	completed := 0
	for _, c := range appender.snapshot() {
		if c.isComplete {
			completed++
		}
	}
	assert.Equal(t, 2, completed)
}

func TestManager_StopWaitsPastCancelledRequest(t *testing.T) {
	ctx := context.Background()
	gate := newGatedTranscriber()
	mgr, meetings, appender := newManagerWith(t, clock.NewMock(), gate, nil, time.Minute)

	userID := uuid.New()
	_, err := meetings.Create(ctx, entities.NewMeeting("event-123", userID, "Standup"))
	require.NoError(t, err)
	require.NoError(t, mgr.StartSession(ctx, "event-123", userID, StartOptions{}))
	require.NoError(t, mgr.PushAudio("event-123", TrackMicrophone, make([]byte, 16000)))

	stopCtx, cancel := context.WithCancel(ctx)
	cancel()
	done := make(chan error, 1)
	go func() { done <- mgr.StopSession(stopCtx, "event-123") }()

	waitStarted(t, gate)
	assert.Never(t, func() bool { return len(done) > 0 }, 100*time.Millisecond, 10*time.Millisecond,
		"stop returned before the last chunk was transcribed")

	close(gate.release)
	require.NoError(t, recvErr(t, done))

	calls := appender.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "late words", calls[0].segments[0].Text)
	assert.False(t, calls[0].isComplete)
	assert.Empty(t, calls[1].segments)
	assert.True(t, calls[1].isComplete)

	m, _ := meetings.FindByID(ctx, "event-123")
	assert.Equal(t, entities.MeetingStatusCompleted, m.Status)
}

func TestManager_LateSegmentKeepsTranscriptComplete(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMock()
	gate := newGatedTranscriber()
	mgr, meetings, appender := newManagerWith(t, clk, gate, nil, 10*time.Second)

	userID := uuid.New()
	_, err := meetings.Create(ctx, entities.NewMeeting("event-123", userID, "Standup"))
	require.NoError(t, err)
	require.NoError(t, mgr.StartSession(ctx, "event-123", userID, StartOptions{}))
	require.NoError(t, mgr.PushAudio("event-123", TrackMicrophone, make([]byte, 16000)))

	done := make(chan error, 1)
	go func() { done <- mgr.StopSession(ctx, "event-123") }()
	waitStarted(t, gate)

	// the wait gives up once the stop timeout passes on the clock
	require.Eventually(t, func() bool {
		clk.Add(10 * time.Second)
		return len(appender.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, recvErr(t, done))

	close(gate.release)
	require.Eventually(t, func() bool { return len(appender.snapshot()) == 2 }, 2*time.Second, 5*time.Millisecond)

	calls := appender.snapshot()
	assert.True(t, calls[0].isComplete)
	assert.Empty(t, calls[0].segments)
	assert.Equal(t, "late words", calls[1].segments[0].Text)
	assert.True(t, calls[1].isComplete, "a late segment must not reopen the transcript")
}
