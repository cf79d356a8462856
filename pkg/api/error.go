// Package api holds the JSON bodies exchanged between the interview server
// and its clients.
package api

// Response status values.
const (
	StatusOK      = "ok"
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// NewError builds an ErrorResponse with status "error".
func NewError(message string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: message}
}
