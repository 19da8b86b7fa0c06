package errors

// ErrorCode is the machine-readable code carried by every AppError
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS   ErrorCode = 1003
	ErrorCode_FORBIDDEN        ErrorCode = 1004
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1005

	// Auth
	ErrorCode_UNAUTHENTICATED             ErrorCode = 2000
	ErrorCode_AUTH_INVALID_TOKEN          ErrorCode = 2001
	ErrorCode_AUTH_TOKEN_EXPIRED          ErrorCode = 2002
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN  ErrorCode = 2003
	ErrorCode_AUTH_OAUTH_FAILED           ErrorCode = 2004
	ErrorCode_AUTH_USER_NOT_FOUND         ErrorCode = 2005
	ErrorCode_AUTH_AUTHENTICATION_REQUIRE ErrorCode = 2006

	// Calendar & meetings
	ErrorCode_CALENDAR_FETCH_FAILED     ErrorCode = 3000
	ErrorCode_MEETING_NOT_FOUND         ErrorCode = 3001
	ErrorCode_MEETING_OPERATION_FAILED  ErrorCode = 3002
	ErrorCode_INVITATION_NOT_FOUND      ErrorCode = 3003
	ErrorCode_NOTE_NOT_FOUND            ErrorCode = 3004
	ErrorCode_RECORDING_ALREADY_RUNNING ErrorCode = 3005
	ErrorCode_RECORDING_NOT_RUNNING     ErrorCode = 3006
	ErrorCode_CAPTURE_UNSUPPORTED       ErrorCode = 3007
	ErrorCode_CAPTURE_PERMISSION_DENIED ErrorCode = 3008

	// AI
	ErrorCode_AI_TRANSCRIPTION_UNAVAILABLE ErrorCode = 4000
	ErrorCode_AI_SUMMARY_FAILED            ErrorCode = 4001
	ErrorCode_AI_SERVICE_UNAVAILABLE       ErrorCode = 4002
	ErrorCode_AI_QUOTA_EXCEEDED            ErrorCode = 4003

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = 5000
	ErrorCode_INTEGRATION_CACHE_FAILED        ErrorCode = 5001
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 5002
	ErrorCode_INTEGRATION_SEARCH_FAILED       ErrorCode = 5003

	// Persistence
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 6000
	ErrorCode_DB_QUERY_FAILED      ErrorCode = 6001
	ErrorCode_PERSISTENCE_FAILED   ErrorCode = 6002
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                         "OK",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:                  "ALREADY_EXISTS",
	ErrorCode_FORBIDDEN:                       "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_UNAUTHENTICATED:                 "UNAUTHENTICATED",
	ErrorCode_AUTH_INVALID_TOKEN:              "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:              "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_REFRESH_TOKEN:      "AUTH_INVALID_REFRESH_TOKEN",
	ErrorCode_AUTH_OAUTH_FAILED:               "AUTH_OAUTH_FAILED",
	ErrorCode_AUTH_USER_NOT_FOUND:             "AUTH_USER_NOT_FOUND",
	ErrorCode_AUTH_AUTHENTICATION_REQUIRE:     "AUTHENTICATION_REQUIRED",
	ErrorCode_CALENDAR_FETCH_FAILED:           "CALENDAR_FETCH_FAILED",
	ErrorCode_MEETING_NOT_FOUND:               "MEETING_NOT_FOUND",
	ErrorCode_MEETING_OPERATION_FAILED:        "MEETING_OPERATION_FAILED",
	ErrorCode_INVITATION_NOT_FOUND:            "INVITATION_NOT_FOUND",
	ErrorCode_NOTE_NOT_FOUND:                  "NOTE_NOT_FOUND",
	ErrorCode_RECORDING_ALREADY_RUNNING:       "RECORDING_ALREADY_RUNNING",
	ErrorCode_RECORDING_NOT_RUNNING:           "RECORDING_NOT_RUNNING",
	ErrorCode_CAPTURE_UNSUPPORTED:             "CAPTURE_UNSUPPORTED",
	ErrorCode_CAPTURE_PERMISSION_DENIED:       "CAPTURE_PERMISSION_DENIED",
	ErrorCode_AI_TRANSCRIPTION_UNAVAILABLE:    "TRANSCRIPTION_UNAVAILABLE",
	ErrorCode_AI_SUMMARY_FAILED:               "SUMMARY_GENERATION_FAILED",
	ErrorCode_AI_SERVICE_UNAVAILABLE:          "AI_SERVICE_UNAVAILABLE",
	ErrorCode_AI_QUOTA_EXCEEDED:               "AI_QUOTA_EXCEEDED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "EXTERNAL_API_FAILED",
	ErrorCode_INTEGRATION_SEARCH_FAILED:       "SEARCH_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:            "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
	ErrorCode_PERSISTENCE_FAILED:              "PERSISTENCE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
