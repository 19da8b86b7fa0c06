package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

type staticValidator struct {
	user *entities.User
}

func (v staticValidator) ValidateSession(_ context.Context, token string) (*entities.User, error) {
	if token != "good" {
		return nil, entities.ErrInvalidToken
	}
	return v.user, nil
}

func TestEchoAuth(t *testing.T) {
	user := &entities.User{ID: uuid.New(), Email: "ana@example.com"}
	e := echo.New()
	h := EchoAuth(staticValidator{user: user})(func(c echo.Context) error {
		id, ok := UserIDFromContext(c)
		if !ok || id != user.ID {
			t.Fatalf("user_id not set")
		}
		got, ok := UserFromContext(c)
		if !ok || got.Email != user.Email {
			t.Fatalf("user not set")
		}
		return c.NoContent(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusNoContent},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: "good"}) }, http.StatusNoContent},
		{"query", func(r *http.Request) { r.URL.RawQuery = "access_token=good" }, http.StatusNoContent},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"invalid", func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h(c)
			if tt.status == http.StatusNoContent {
				require.NoError(t, err)
				assert.Equal(t, tt.status, rec.Code)
				return
			}
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Code)
		})
	}
}
