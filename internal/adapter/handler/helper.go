package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-copilot/errors"
	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/external/calendar"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/notes"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/transcript"
	pkgvalidator "github.com/johnquangdev/meeting-copilot/pkg/validator"
)

// CalendarConnectMessage is shown when the user has no Google token
const CalendarConnectMessage = "Please connect your Google Calendar"

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Info    string      `json:"info,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// toAppError maps domain errors onto API errors. Anything unknown is
// returned as-is and surfaces as an internal error.
func toAppError(err error, meetingID string) error {
	var appErr errors.AppError
	switch {
	case err == nil:
		return nil
	case stdErrors.As(err, &appErr):
		return err
	case stdErrors.Is(err, entities.ErrNoGoogleToken), stdErrors.Is(err, calendar.ErrUnauthorized):
		return errors.ErrAuthenticationRequired(CalendarConnectMessage)
	case stdErrors.Is(err, entities.ErrMeetingNotFound):
		return errors.ErrMeetingNotFound(meetingID)
	case stdErrors.Is(err, entities.ErrInvalidMeetingID):
		return errors.ErrInvalidArgument("meeting id must be at least 5 characters")
	case stdErrors.Is(err, entities.ErrInvalidMeetingStatus):
		return errors.ErrInvalidArgument("status must be invited, active, in_progress or completed")
	case stdErrors.Is(err, entities.ErrInvalidEmail):
		return errors.ErrInvalidArgument("a valid invitee email is required")
	case stdErrors.Is(err, notes.ErrEmptyContent):
		return errors.ErrInvalidArgument("note content is required")
	case stdErrors.Is(err, entities.ErrAlreadyRecording):
		return errors.ErrRecordingAlreadyRunning(meetingID)
	case stdErrors.Is(err, entities.ErrNotRecording):
		return errors.ErrRecordingNotRunning(meetingID)
	case stdErrors.Is(err, entities.ErrCaptureUnsupported):
		return errors.ErrCaptureUnsupported(err)
	case stdErrors.Is(err, entities.ErrPermissionDenied):
		return errors.ErrCapturePermissionDenied(err)
	case stdErrors.Is(err, entities.ErrAIDisabled):
		return errors.ErrAIServiceUnavailable("ai")
	case stdErrors.Is(err, entities.ErrOAuthStateMismatch), stdErrors.Is(err, entities.ErrOAuthCodeInvalid):
		return errors.ErrOAuthFailed("google", err)
	case stdErrors.Is(err, entities.ErrInvalidToken),
		stdErrors.Is(err, entities.ErrSessionNotFound),
		stdErrors.Is(err, entities.ErrSessionExpired):
		return errors.ErrInvalidRefreshToken()
	case stdErrors.Is(err, entities.ErrUserNotFound), stdErrors.Is(err, entities.ErrUnauthorized):
		return errors.ErrUnauthenticated()
	case stdErrors.Is(err, entities.ErrForbidden):
		return errors.ErrForbidden("You do not have access to this meeting")
	case stdErrors.Is(err, transcript.ErrExportUnavailable):
		return errors.ErrStorageFailed("export transcript", err)
	case stdErrors.Is(err, context.DeadlineExceeded):
		return errors.ErrExternalAPIFailed("upstream", err)
	}
	return err
}

// orElse returns the mapped error when err is known, otherwise fallback(err)
func orElse(err error, meetingID string, fallback func(error) errors.AppError) error {
	mapped := toAppError(err, meetingID)
	var appErr errors.AppError
	if stdErrors.As(mapped, &appErr) {
		return mapped
	}
	return fallback(err)
}

// bindAndValidate decodes the request into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.ErrInvalidPayload()
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		return errors.ErrInvalidArgument(pkgvalidator.Describe(err))
	}
	return nil
}

// currentUserID returns the authenticated user id set by the auth middleware
func currentUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		return uuid.Nil, errors.ErrUnauthenticated()
	}
	return id, nil
}
