package domain

import "errors"

// ErrNotFound marks lookups that matched no record.
var ErrNotFound = errors.New("not found")

// Error codes shared by the HTTP error envelope and the provider adapter.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidFile        = "INVALID_FILE"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeNotFound           = "NOT_FOUND"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeModelTimeout       = "MODEL_TIMEOUT"
	CodeNetwork            = "NETWORK_ERROR"
	CodeGenerationFailed   = "GENERATION_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is the taxonomy carried across every layer: a stable code, a
// message safe to show callers, and a retryability flag. The wrapped cause
// is for server-side logs only and is never serialized.
type Error struct {
	Code      string
	Message   string
	Retryable bool

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error for logging without changing
// what callers see.
func (e *Error) WithCause(err error) *Error {
	clone := *e
	clone.cause = err
	return &clone
}

// NewValidationError reports bad user input. Never retryable.
func NewValidationError(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// NewInvalidRequest reports a malformed request at the HTTP boundary.
func NewInvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

// NewInvalidFile reports an unsupported or oversized upload.
func NewInvalidFile(msg string) *Error {
	return &Error{Code: CodeInvalidFile, Message: msg}
}

// NewNotFound reports a missing resource.
func NewNotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NewNetworkError reports a connection-level failure. Retryable.
func NewNetworkError(err error) *Error {
	return &Error{
		Code:      CodeNetwork,
		Message:   "Network connection failed. Please check your connection and try again.",
		Retryable: true,
		cause:     err,
	}
}

// NewInternalError wraps an unexpected failure behind a sanitized message.
// The raw error text is kept for logs only.
func NewInternalError(err error) *Error {
	return &Error{
		Code:      CodeInternal,
		Message:   "An unexpected error occurred. Please try again later.",
		Retryable: true,
		cause:     err,
	}
}

// AsError extracts a *Error from err, falling back to an internal error so
// callers always have an envelope to return.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return NewInternalError(err)
}
