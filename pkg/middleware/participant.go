package middleware

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/meeting"
)

// MeetingRoles resolves what a user is to a meeting
type MeetingRoles interface {
	RoleOf(ctx context.Context, meetingID string, userID uuid.UUID) (meeting.Role, error)
}

// RequireMeetingOwner middleware: only allow the meeting owner to perform action
func RequireMeetingOwner(roles MeetingRoles) echo.MiddlewareFunc {
	return RequireMeetingRole(roles, meeting.RoleOwner)
}

// RequireMeetingParticipant middleware: allow the owner and accepted invitees
func RequireMeetingParticipant(roles MeetingRoles) echo.MiddlewareFunc {
	return RequireMeetingRole(roles, meeting.RoleOwner, meeting.RoleInvitee)
}

// RequireMeetingRole middleware: only allow users holding one of allowed on the :id meeting
func RequireMeetingRole(roles MeetingRoles, allowed ...meeting.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			meetingID := c.Param("id")
			if meetingID == "" {
				return c.JSON(http.StatusBadRequest, map[string]interface{}{
					"error":   "invalid_meeting_id",
					"message": "meeting ID is required",
				})
			}
			userID, ok := c.Get("user_id").(uuid.UUID)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": "user not authenticated",
				})
			}

			role, err := roles.RoleOf(c.Request().Context(), meetingID, userID)
			if err != nil {
				if stdErrors.Is(err, entities.ErrMeetingNotFound) {
					return c.JSON(http.StatusNotFound, map[string]interface{}{
						"error":   "meeting_not_found",
						"message": err.Error(),
					})
				}
				return c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"error":   "meeting_lookup_failed",
					"message": err.Error(),
				})
			}
			for _, r := range allowed {
				if role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"error":   "not_participant",
				"message": "user has no access to this meeting",
			})
		}
	}
}
