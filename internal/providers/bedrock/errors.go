package bedrock

import (
	"context"
	"errors"
	"net"

	"github.com/aws/smithy-go"

	"server/internal/domain"
)

// mapError converts SDK failures into the shared error taxonomy. The raw
// error stays attached as the cause for server-side logging; the message
// is what callers may see.
func mapError(err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "ValidationException":
			return (&domain.Error{
				Code:    domain.CodeValidation,
				Message: "Invalid request parameters. Please check your input and try again.",
			}).WithCause(err)
		case "ThrottlingException", "TooManyRequestsException":
			return (&domain.Error{
				Code:      domain.CodeRateLimitExceeded,
				Message:   "Rate limit exceeded. Please wait a moment and try again.",
				Retryable: true,
			}).WithCause(err)
		case "AccessDeniedException":
			return (&domain.Error{
				Code:    domain.CodeAccessDenied,
				Message: "Access denied. Please check your AWS credentials and permissions.",
			}).WithCause(err)
		case "ResourceNotFoundException":
			return (&domain.Error{
				Code:    domain.CodeNotFound,
				Message: "The requested resource was not found.",
			}).WithCause(err)
		case "ServiceUnavailableException", "ModelNotReadyException":
			return (&domain.Error{
				Code:      domain.CodeServiceUnavailable,
				Message:   "The service is temporarily unavailable. Please try again later.",
				Retryable: true,
			}).WithCause(err)
		case "ModelTimeoutException":
			return (&domain.Error{
				Code:      domain.CodeModelTimeout,
				Message:   "The model request timed out. Please try again with a simpler prompt.",
				Retryable: true,
			}).WithCause(err)
		}
		return domain.NewInternalError(err)
	}

	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewNetworkError(err)
	}
	return domain.NewInternalError(err)
}
