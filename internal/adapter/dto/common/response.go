package common

// SuccessResponse is the envelope of every successful response
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every failed response
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Info    string `json:"info,omitempty"`
}

// MessageResponse carries a single human readable message
type MessageResponse struct {
	Message string `json:"message"`
}

// ListResponse wraps a list with its length
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}
