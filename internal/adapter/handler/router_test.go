package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/recording"
)

// fakeAuth trusts the X-User header as the user id
func fakeAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Request().Header.Get("X-User"))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
		}
		user := &entities.User{ID: id, Email: "someone@example.com"}
		c.Set(middleware.ContextKeyUser, user)
		c.Set(middleware.ContextKeyUserID, id)
		return next(c)
	}
}

type staticRoles map[uuid.UUID]meeting.Role

func (r staticRoles) RoleOf(_ context.Context, _ string, userID uuid.UUID) (meeting.Role, error) {
	if role, ok := r[userID]; ok {
		return role, nil
	}
	return meeting.RoleNone, nil
}

func serve(e *echo.Echo, method, target string, user *uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if user != nil {
		req.Header.Set("X-User", user.String())
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthAndMetrics(t *testing.T) {
	e := newEcho()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "router_test_total", Help: "test"}))
	NewRouter(nil, Handlers{}, fakeAuth, reg).Setup(e)

	rec := serve(e, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = serve(e, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "router_test_total")
}

func TestRouterMissingHandlers(t *testing.T) {
	e := newEcho()
	NewRouter(nil, Handlers{}, fakeAuth, nil).Setup(e)
	user := uuid.New()

	rec := serve(e, http.MethodGet, "/v1/auth/google/login", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = serve(e, http.MethodGet, "/v1/meetings/evt-123/summary", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/v1/meetings/evt-123/summary", &user)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestRouterMeetingRoles(t *testing.T) {
	owner, guest, stranger := uuid.New(), uuid.New(), uuid.New()

	mgr := &mockRecordingManager{}
	mgr.On("Session", "evt-123").Return(recording.SessionInfo{}, false)
	mgr.On("StopSession", mock.Anything, "evt-123").Return(nil)

	e := newEcho()
	NewRouter(nil, Handlers{Recording: NewRecordingHandler(mgr, nil)}, fakeAuth, nil).
		WithMeetingRoles(staticRoles{owner: meeting.RoleOwner, guest: meeting.RoleInvitee}).
		Setup(e)

	tests := []struct {
		name   string
		method string
		path   string
		user   uuid.UUID
		status int
	}{
		{"owner reads status", http.MethodGet, "/v1/meetings/evt-123/recording", owner, http.StatusOK},
		{"invitee reads status", http.MethodGet, "/v1/meetings/evt-123/recording", guest, http.StatusOK},
		{"stranger blocked", http.MethodGet, "/v1/meetings/evt-123/recording", stranger, http.StatusForbidden},
		{"invitee cannot stop", http.MethodPost, "/v1/meetings/evt-123/recording/stop", guest, http.StatusForbidden},
		{"owner stops", http.MethodPost, "/v1/meetings/evt-123/recording/stop", owner, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			rec := serve(e, tt.method, tt.path, &user)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
