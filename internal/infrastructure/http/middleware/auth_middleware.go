package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// Echo context keys set by EchoAuth
const (
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"
)

// SessionValidator resolves an access token to its user
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*entities.User, error)
}

// EchoAuth returns an Echo middleware that validates JWT and sets
// "user_id" (uuid.UUID) and "user" (*entities.User) into Echo context
func EchoAuth(validator SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}

			user, err := validator.ValidateSession(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(ContextKeyUser, user)
			c.Set(ContextKeyUserID, user.ID)

			return next(c)
		}
	}
}

// UserFromContext returns the user set by EchoAuth
func UserFromContext(c echo.Context) (*entities.User, bool) {
	user, ok := c.Get(ContextKeyUser).(*entities.User)
	return user, ok
}

// UserIDFromContext returns the user id set by EchoAuth
func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	return id, ok
}

// extractToken reads the bearer token, falling back to the access_token
// cookie and then the query string (EventSource cannot set headers)
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return c.QueryParam("access_token")
}
