package entities

import "errors"

// Domain errors
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidName  = errors.New("invalid name")

	// OAuth errors
	ErrOAuthStateMismatch = errors.New("oauth state mismatch")
	ErrOAuthCodeInvalid   = errors.New("oauth code invalid")
	ErrNoGoogleToken      = errors.New("no google token stored for user")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid token")

	// Meeting errors
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrInvalidMeetingID     = errors.New("invalid meeting id")
	ErrInvalidMeetingStatus = errors.New("invalid meeting status")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrNoteNotFound         = errors.New("note not found")

	// Capture errors
	ErrCaptureUnsupported = errors.New("audio capture unsupported")
	ErrPermissionDenied   = errors.New("audio capture permission denied")
	ErrAlreadyRecording   = errors.New("already recording")
	ErrNotRecording       = errors.New("not recording")

	// AI errors
	ErrAIDisabled = errors.New("ai service disabled")

	// Generic errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
