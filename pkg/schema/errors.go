package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeStore      = "STORE_ERROR"
	ErrCodeRemote     = "REMOTE_ERROR"
	ErrCodeParse      = "PARSE_ERROR"
	ErrCodeExport     = "EXPORT_ERROR"
)

// NavError is the structured error type for all cost-navigator operations.
type NavError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	NodeID  string         `json:"node_id,omitempty"`
	Cause   error          `json:"-"`
}

func (e *NavError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("[%s] node %s: %s", e.Code, e.NodeID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *NavError) Unwrap() error {
	return e.Cause
}

// NewError creates a new NavError.
func NewError(code, message string) *NavError {
	return &NavError{Code: code, Message: message}
}

// NewErrorf creates a new NavError with a formatted message.
func NewErrorf(code, format string, args ...any) *NavError {
	return &NavError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithNode attaches a node ID to the error.
func (e *NavError) WithNode(nodeID string) *NavError {
	e.NodeID = nodeID
	return e
}

// WithCause attaches an underlying cause.
func (e *NavError) WithCause(err error) *NavError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *NavError) WithDetails(details map[string]any) *NavError {
	e.Details = details
	return e
}
