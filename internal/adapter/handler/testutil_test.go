package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/http/middleware"
	pkgvalidator "github.com/johnquangdev/meeting-copilot/pkg/validator"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Info    string          `json:"info"`
	Data    json.RawMessage `json:"data"`
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	return e
}

// newContext builds a request context. A JSON body sets the content type.
func newContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withUser(c echo.Context, user *entities.User) {
	c.Set(middleware.ContextKeyUser, user)
	c.Set(middleware.ContextKeyUserID, user.ID)
}

func setMeetingID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func testUser() *entities.User {
	return &entities.User{ID: uuid.New(), Email: "owner@example.com", DisplayName: "Owner"}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decode(t, rec)
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %q: %v", string(env.Data), err)
	}
}
