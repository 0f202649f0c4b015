package device

import "fmt"

// Error codes for device API failures.
const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeTimeoutError = "TIMEOUT_ERROR"
	CodeInvalidData  = "INVALID_DATA"
	CodeServerError  = "SERVER_ERROR"
)

// APIError describes a failed device API call.
type APIError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func newAPIError(code, message string, status int, err error) *APIError {
	return &APIError{Code: code, Status: status, Message: message, Err: err}
}
