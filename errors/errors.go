package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the error type surfaced to API clients
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTERNAL,
		Message:   "Internal server error",
		Timestamp: time.Now(),
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_ARGUMENT,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_NOT_FOUND,
		Message:   fmt.Sprintf("%s not found", resource),
		Timestamp: time.Now(),
	}
}

func ErrForbidden(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_FORBIDDEN,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_PAYLOAD,
		Message:   "Invalid payload",
		Timestamp: time.Now(),
	}
}

// Authentication Errors
func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_UNAUTHENTICATED,
		Message:   "Authentication required",
		Timestamp: time.Now(),
	}
}

func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_INVALID_TOKEN,
		Message:   "Invalid authentication token",
		Timestamp: time.Now(),
	}
}

func ErrInvalidRefreshToken() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_INVALID_REFRESH_TOKEN,
		Message:   "Invalid refresh token",
		Timestamp: time.Now(),
	}
}

func ErrOAuthFailed(provider string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_OAUTH_FAILED,
		Message:   fmt.Sprintf("OAuth authentication failed with %s", provider),
		Timestamp: time.Now(),
	}
}

// ErrAuthenticationRequired is returned when a Google token is needed but missing
func ErrAuthenticationRequired(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_AUTHENTICATION_REQUIRE,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Calendar & Meeting Errors
func ErrCalendarFetchFailed(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_CALENDAR_FETCH_FAILED,
		Message:   "Failed to fetch calendar events",
		Timestamp: time.Now(),
	}
}

func ErrMeetingNotFound(meetingID string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_MEETING_NOT_FOUND,
		Message:   "Meeting not found",
		Timestamp: time.Now(),
	}.WithDetail("meeting_id", meetingID)
}

func ErrMeetingOperationFailed(operation string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_MEETING_OPERATION_FAILED,
		Message:   fmt.Sprintf("Meeting operation failed: %s", operation),
		Timestamp: time.Now(),
	}
}

func ErrInvitationNotFound(invitationID string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_INVITATION_NOT_FOUND,
		Message:   "Invitation not found",
		Timestamp: time.Now(),
	}.WithDetail("invitation_id", invitationID)
}

func ErrNoteNotFound(noteID string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_NOTE_NOT_FOUND,
		Message:   "Note not found",
		Timestamp: time.Now(),
	}.WithDetail("note_id", noteID)
}

// Recording Errors
func ErrRecordingAlreadyRunning(meetingID string) AppError {
	return AppError{
		HTTPCode:  http.StatusConflict,
		Code:      ErrorCode_RECORDING_ALREADY_RUNNING,
		Message:   "Recording already in progress",
		Timestamp: time.Now(),
	}.WithDetail("meeting_id", meetingID)
}

func ErrRecordingNotRunning(meetingID string) AppError {
	return AppError{
		HTTPCode:  http.StatusConflict,
		Code:      ErrorCode_RECORDING_NOT_RUNNING,
		Message:   "No recording in progress",
		Timestamp: time.Now(),
	}.WithDetail("meeting_id", meetingID)
}

func ErrCaptureUnsupported(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_CAPTURE_UNSUPPORTED,
		Message:   "Audio capture is not supported on this client",
		Timestamp: time.Now(),
	}
}

func ErrCapturePermissionDenied(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_CAPTURE_PERMISSION_DENIED,
		Message:   "Permission to capture audio was denied",
		Timestamp: time.Now(),
	}
}

// AI Errors
func ErrTranscriptionUnavailable(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusServiceUnavailable,
		Code:      ErrorCode_AI_TRANSCRIPTION_UNAVAILABLE,
		Message:   "Transcription is unavailable",
		Timestamp: time.Now(),
	}
}

func ErrAISummaryFailed(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_AI_SUMMARY_FAILED,
		Message:   "Failed to generate summary",
		Timestamp: time.Now(),
	}
}

func ErrAIServiceUnavailable(service string) AppError {
	return AppError{
		HTTPCode:  http.StatusServiceUnavailable,
		Code:      ErrorCode_AI_SERVICE_UNAVAILABLE,
		Message:   "AI service temporarily unavailable",
		Timestamp: time.Now(),
	}.WithDetail("service", service)
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:   fmt.Sprintf("Storage operation failed: %s", operation),
		Timestamp: time.Now(),
	}
}

func ErrCacheFailed(operation string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTEGRATION_CACHE_FAILED,
		Message:   fmt.Sprintf("Cache operation failed: %s", operation),
		Timestamp: time.Now(),
	}
}

func ErrExternalAPIFailed(service string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadGateway,
		Code:      ErrorCode_INTEGRATION_EXTERNAL_API_FAILED,
		Message:   fmt.Sprintf("External API call failed: %s", service),
		Timestamp: time.Now(),
	}
}

func ErrSearchFailed(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTEGRATION_SEARCH_FAILED,
		Message:   "Search failed",
		Timestamp: time.Now(),
	}
}

// Database Errors
func ErrDBConnectionFailed(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_DB_CONNECTION_FAILED,
		Message:   "Database connection failed",
		Timestamp: time.Now(),
	}
}

func ErrDBQueryFailed(query string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_DB_QUERY_FAILED,
		Message:   "Database query failed",
		Timestamp: time.Now(),
	}.WithDetail("query", query)
}

// ErrPersistenceFailed wraps a failed write; callers may retry manually
func ErrPersistenceFailed(resource string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_PERSISTENCE_FAILED,
		Message:   fmt.Sprintf("Failed to save %s", resource),
		Timestamp: time.Now(),
	}
}
