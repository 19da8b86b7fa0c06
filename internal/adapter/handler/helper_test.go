package handler

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/meeting-copilot/errors"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing google token", entities.ErrNoGoogleToken, http.StatusUnauthorized},
		{"wrapped meeting not found", fmt.Errorf("load: %w", entities.ErrMeetingNotFound), http.StatusNotFound},
		{"bad status", entities.ErrInvalidMeetingStatus, http.StatusBadRequest},
		{"already recording", entities.ErrAlreadyRecording, http.StatusConflict},
		{"not recording", entities.ErrNotRecording, http.StatusConflict},
		{"permission denied", entities.ErrPermissionDenied, http.StatusForbidden},
		{"ai disabled", entities.ErrAIDisabled, http.StatusServiceUnavailable},
		{"expired session", entities.ErrSessionExpired, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("invite: %w", entities.ErrForbidden), http.StatusForbidden},
		{"deadline", context.DeadlineExceeded, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr errors.AppError
			if !stdErrors.As(toAppError(tt.err, "evt-123"), &appErr) {
				t.Fatalf("expected AppError for %v", tt.err)
			}
			assert.Equal(t, tt.status, appErr.HTTPCode)
		})
	}

	unknown := stdErrors.New("boom")
	assert.Equal(t, unknown, toAppError(unknown, ""))
	assert.Nil(t, toAppError(nil, ""))
}

func TestOrElse(t *testing.T) {
	var appErr errors.AppError

	err := orElse(stdErrors.New("disk full"), "evt-123", func(err error) errors.AppError {
		return errors.ErrPersistenceFailed("notes", err)
	})
	assert.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPCode)

	err = orElse(entities.ErrMeetingNotFound, "evt-123", errors.ErrCalendarFetchFailed)
	assert.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}

func TestHandleError(t *testing.T) {
	e := newEcho()

	c, rec := newContext(e, http.MethodGet, "/", "")
	if err := HandleError(nil, c, errors.ErrAuthenticationRequired(CalendarConnectMessage)); err != nil {
		t.Fatalf("HandleError: %v", err)
	}
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CalendarConnectMessage, decode(t, rec).Message)

	c, rec = newContext(e, http.MethodGet, "/", "")
	if err := HandleError(nil, c, stdErrors.New("boom")); err != nil {
		t.Fatalf("HandleError: %v", err)
	}
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, int(errors.ErrorCode_INTERNAL), env.Code)
	assert.Equal(t, "boom", env.Info)
}
