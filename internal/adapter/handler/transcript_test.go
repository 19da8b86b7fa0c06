package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	meetingDTO "github.com/johnquangdev/meeting-copilot/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/transcript"
)

type mockTranscriptService struct {
	mock.Mock
}

func (m *mockTranscriptService) Document(ctx context.Context, meetingID string) (*entities.Transcript, error) {
	args := m.Called(ctx, meetingID)
	doc, _ := args.Get(0).(*entities.Transcript)
	return doc, args.Error(1)
}

func (m *mockTranscriptService) Append(ctx context.Context, meetingID string, segments []entities.TranscriptSegment, isComplete bool) error {
	return m.Called(ctx, meetingID, segments, isComplete).Error(0)
}

func (m *mockTranscriptService) Subscribe(ctx context.Context, meetingID string) (<-chan []entities.TranscriptSegment, func(), error) {
	args := m.Called(ctx, meetingID)
	ch, _ := args.Get(0).(chan []entities.TranscriptSegment)
	cancel, _ := args.Get(1).(func())
	return ch, cancel, args.Error(2)
}

func (m *mockTranscriptService) Export(ctx context.Context, meetingID string) (string, error) {
	args := m.Called(ctx, meetingID)
	return args.String(0), args.Error(1)
}

func TestAppendTranscript(t *testing.T) {
	e := newEcho()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC))
	given := time.Date(2024, 3, 4, 9, 29, 0, 0, time.UTC)

	svc := &mockTranscriptService{}
	svc.On("Append", mock.Anything, "evt-123", mock.Anything, true).Return(nil)
	h := NewTranscriptHandler(svc, clk, nil)

	body := `{"segments":[{"text":"hello","timestamp":"2024-03-04T09:29:00Z","confidence":0.9},{"text":"world"}],"is_complete":true}`
	c, rec := newContext(e, http.MethodPost, "/v1/meetings/evt-123/transcript", body)
	setMeetingID(c, "evt-123")
	if err := h.Append(c); err != nil {
		t.Fatalf("Append: %v", err)
	}
	assert.Equal(t, http.StatusOK, rec.Code)

	segments := svc.Calls[0].Arguments.Get(2).([]entities.TranscriptSegment)
	if assert.Len(t, segments, 2) {
		assert.True(t, given.Equal(segments[0].Timestamp))
		if assert.NotNil(t, segments[0].Confidence) {
			assert.InDelta(t, 0.9, *segments[0].Confidence, 1e-9)
		}
		assert.True(t, clk.Now().Equal(segments[1].Timestamp))
		assert.Nil(t, segments[1].Confidence)
	}
}

func TestAppendTranscriptRejectsBadSegments(t *testing.T) {
	e := newEcho()
	svc := &mockTranscriptService{}
	h := NewTranscriptHandler(svc, clock.NewMock(), nil)

	for _, body := range []string{
		`{"segments":[{"text":""}]}`,
		`{"segments":[{"text":"hi","confidence":1.5}]}`,
		`{"segments":`,
	} {
		c, rec := newContext(e, http.MethodPost, "/v1/meetings/evt-123/transcript", body)
		setMeetingID(c, "evt-123")
		if err := h.Append(c); err != nil {
			t.Fatalf("Append: %v", err)
		}
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	svc.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetTranscript(t *testing.T) {
	e := newEcho()
	svc := &mockTranscriptService{}
	svc.On("Document", mock.Anything, "evt-123").Return(&entities.Transcript{
		MeetingID: "evt-123",
		Segments:  []entities.TranscriptSegment{{Text: "hello", Timestamp: time.Now().UTC()}},
	}, nil)
	h := NewTranscriptHandler(svc, nil, nil)

	c, rec := newContext(e, http.MethodGet, "/v1/meetings/evt-123/transcript", "")
	setMeetingID(c, "evt-123")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	var got meetingDTO.TranscriptResponse
	decodeData(t, rec, &got)
	assert.Equal(t, "evt-123", got.MeetingID)
	assert.Len(t, got.Segments, 1)
}

func TestStreamTranscript(t *testing.T) {
	e := newEcho()
	updates := make(chan []entities.TranscriptSegment, 1)
	updates <- []entities.TranscriptSegment{{Text: "hello", Timestamp: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}}
	close(updates)

	cancelled := false
	svc := &mockTranscriptService{}
	svc.On("Subscribe", mock.Anything, "evt-123").Return(updates, func() { cancelled = true }, nil)
	h := NewTranscriptHandler(svc, clock.NewMock(), nil)

	c, rec := newContext(e, http.MethodGet, "/v1/meetings/evt-123/transcript/stream", "")
	setMeetingID(c, "evt-123")
	if err := h.Stream(c); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "event: transcript\ndata: ["), body)
	assert.Contains(t, body, `"text":"hello"`)
	assert.True(t, strings.HasSuffix(body, "\n\n"))
	assert.True(t, cancelled)
}

func TestExportUnavailable(t *testing.T) {
	e := newEcho()
	svc := &mockTranscriptService{}
	svc.On("Export", mock.Anything, "evt-123").Return("", transcript.ErrExportUnavailable)
	h := NewTranscriptHandler(svc, nil, nil)

	c, rec := newContext(e, http.MethodGet, "/v1/meetings/evt-123/transcript/export", "")
	setMeetingID(c, "evt-123")
	if err := h.Export(c); err != nil {
		t.Fatalf("Export: %v", err)
	}
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
