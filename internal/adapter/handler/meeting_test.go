package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	meetingDTO "github.com/johnquangdev/meeting-copilot/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/external/calendar"
)

type mockMeetingService struct {
	mock.Mock
}

func (m *mockMeetingService) UpcomingEvents(ctx context.Context, userID uuid.UUID) ([]calendar.Event, error) {
	args := m.Called(ctx, userID)
	events, _ := args.Get(0).([]calendar.Event)
	return events, args.Error(1)
}

func (m *mockMeetingService) EventsInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]calendar.Event, error) {
	args := m.Called(ctx, userID, from, to)
	events, _ := args.Get(0).([]calendar.Event)
	return events, args.Error(1)
}

func (m *mockMeetingService) SyncMeetings(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	saved, _ := args.Get(0).([]string)
	return saved, args.Error(1)
}

func (m *mockMeetingService) GetMeetingDetails(ctx context.Context, eventID string, userID uuid.UUID) (*entities.Meeting, error) {
	args := m.Called(ctx, eventID, userID)
	meeting, _ := args.Get(0).(*entities.Meeting)
	return meeting, args.Error(1)
}

func (m *mockMeetingService) ListMeetings(ctx context.Context, userID uuid.UUID) ([]*entities.Meeting, error) {
	args := m.Called(ctx, userID)
	meetings, _ := args.Get(0).([]*entities.Meeting)
	return meetings, args.Error(1)
}

func (m *mockMeetingService) UpdateStatus(ctx context.Context, meetingID string, status entities.MeetingStatus) error {
	return m.Called(ctx, meetingID, status).Error(0)
}

func TestListEventsWithoutToken(t *testing.T) {
	e := newEcho()
	user := testUser()
	svc := &mockMeetingService{}
	svc.On("UpcomingEvents", mock.Anything, user.ID).
		Return(nil, fmt.Errorf("calendar: %w", entities.ErrNoGoogleToken))
	h := NewMeetingHandler(svc, nil)

	c, rec := newContext(e, http.MethodGet, "/v1/calendar/events", "")
	withUser(c, user)
	if err := h.ListEvents(c); err != nil {
		t.Fatalf("ListEvents: %v", err)
	}

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, CalendarConnectMessage, env.Message)
	assert.Empty(t, env.Data)
}

func TestListEventsRange(t *testing.T) {
	e := newEcho()
	user := testUser()
	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)

	svc := &mockMeetingService{}
	svc.On("EventsInRange", mock.Anything, user.ID, mock.Anything, mock.Anything).
		Return([]calendar.Event{{
			ID:      "evt-123",
			Summary: "Standup",
			Start:   calendar.EventTime{DateTime: "2024-03-04T09:00:00Z"},
			End:     calendar.EventTime{DateTime: "2024-03-04T09:15:00Z"},
			ConferenceData: &calendar.ConferenceData{EntryPoints: []calendar.EntryPoint{
				{EntryPointType: "video", URI: "https://meet.google.com/abc-defg-hij"},
			}},
		}}, nil)
	h := NewMeetingHandler(svc, nil)

	target := fmt.Sprintf("/v1/calendar/events?from=%s&to=%s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	c, rec := newContext(e, http.MethodGet, target, "")
	withUser(c, user)
	if err := h.ListEvents(c); err != nil {
		t.Fatalf("ListEvents: %v", err)
	}

	assert.Equal(t, http.StatusOK, rec.Code)
	var events []meetingDTO.EventResponse
	decodeData(t, rec, &events)
	if assert.Len(t, events, 1) {
		assert.Equal(t, "Standup", events[0].Title)
		assert.Equal(t, "https://meet.google.com/abc-defg-hij", events[0].MeetLink)
	}
	call := svc.Calls[0]
	assert.True(t, from.Equal(call.Arguments.Get(2).(time.Time)))
	assert.True(t, to.Equal(call.Arguments.Get(3).(time.Time)))
}

func TestListEventsBadRange(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"only from", "?from=2024-03-04T00:00:00Z"},
		{"not rfc3339", "?from=yesterday&to=today"},
		{"reversed", "?from=2024-03-05T00:00:00Z&to=2024-03-04T00:00:00Z"},
	}
	e := newEcho()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMeetingService{}
			h := NewMeetingHandler(svc, nil)
			c, rec := newContext(e, http.MethodGet, "/v1/calendar/events"+tt.query, "")
			withUser(c, testUser())
			if err := h.ListEvents(c); err != nil {
				t.Fatalf("ListEvents: %v", err)
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "EventsInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSyncCalendar(t *testing.T) {
	e := newEcho()
	user := testUser()
	svc := &mockMeetingService{}
	svc.On("SyncMeetings", mock.Anything, user.ID).Return([]string{"evt-123", "evt-456"}, nil)
	h := NewMeetingHandler(svc, nil)

	c, rec := newContext(e, http.MethodPost, "/v1/calendar/sync", "")
	withUser(c, user)
	if err := h.SyncCalendar(c); err != nil {
		t.Fatalf("SyncCalendar: %v", err)
	}

	var got meetingDTO.SyncResponse
	decodeData(t, rec, &got)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, []string{"evt-123", "evt-456"}, got.Saved)
}

func TestGetMeetingErrors(t *testing.T) {
	e := newEcho()
	user := testUser()
	svc := &mockMeetingService{}
	svc.On("GetMeetingDetails", mock.Anything, "evt-999", user.ID).Return(nil, entities.ErrMeetingNotFound)
	svc.On("GetMeetingDetails", mock.Anything, "evt-other", user.ID).Return(nil, entities.ErrForbidden)
	h := NewMeetingHandler(svc, nil)

	tests := []struct {
		id     string
		status int
	}{
		{"evt-999", http.StatusNotFound},
		{"evt-other", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c, rec := newContext(e, http.MethodGet, "/v1/meetings/"+tt.id, "")
			setMeetingID(c, tt.id)
			withUser(c, user)
			if err := h.GetMeeting(c); err != nil {
				t.Fatalf("GetMeeting: %v", err)
			}
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	e := newEcho()
	svc := &mockMeetingService{}
	svc.On("UpdateStatus", mock.Anything, "evt-123", entities.MeetingStatus("completed")).Return(nil)
	h := NewMeetingHandler(svc, nil)

	c, rec := newContext(e, http.MethodPatch, "/v1/meetings/evt-123/status", `{"status":"archived"}`)
	setMeetingID(c, "evt-123")
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(e, http.MethodPatch, "/v1/meetings/evt-123/status", `{"status":"completed"}`)
	setMeetingID(c, "evt-123")
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
