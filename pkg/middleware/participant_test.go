package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/meeting"
)

type roleTable map[uuid.UUID]meeting.Role

func (r roleTable) RoleOf(_ context.Context, meetingID string, userID uuid.UUID) (meeting.Role, error) {
	if meetingID != "evt-123" {
		return meeting.RoleNone, entities.ErrMeetingNotFound
	}
	if role, ok := r[userID]; ok {
		return role, nil
	}
	return meeting.RoleNone, nil
}

func TestRequireMeetingRole(t *testing.T) {
	owner, guest, stranger := uuid.New(), uuid.New(), uuid.New()
	roles := roleTable{owner: meeting.RoleOwner, guest: meeting.RoleInvitee}
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	tests := []struct {
		name      string
		mw        echo.MiddlewareFunc
		meetingID string
		user      *uuid.UUID
		status    int
	}{
		{"owner passes owner check", RequireMeetingOwner(roles), "evt-123", &owner, http.StatusNoContent},
		{"invitee blocked by owner check", RequireMeetingOwner(roles), "evt-123", &guest, http.StatusForbidden},
		{"invitee passes participant check", RequireMeetingParticipant(roles), "evt-123", &guest, http.StatusNoContent},
		{"stranger blocked", RequireMeetingParticipant(roles), "evt-123", &stranger, http.StatusForbidden},
		{"unknown meeting", RequireMeetingParticipant(roles), "evt-999", &owner, http.StatusNotFound},
		{"no user", RequireMeetingParticipant(roles), "evt-123", nil, http.StatusUnauthorized},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.meetingID)
			if tt.user != nil {
				c.Set("user_id", *tt.user)
			}

			if err := tt.mw(ok)(c); err != nil {
				t.Fatalf("middleware returned error: %v", err)
			}
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
