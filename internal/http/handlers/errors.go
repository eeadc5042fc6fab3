package handlers

import (
	"net/http"

	"server/internal/domain"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// error writes the uniform envelope for err, deriving the HTTP status from
// the error code. Unclassified errors become sanitized 500s.
func (a *App) error(w http.ResponseWriter, err error) {
	de := domain.AsError(err)
	if de.Code == domain.CodeInternal {
		a.Logger.Error().Err(de.Unwrap()).Msg("http: internal error")
	}
	a.json(w, statusForCode(de.Code), errorResponse{Error: errorBody{
		Code:      de.Code,
		Message:   de.Message,
		Retryable: de.Retryable,
	}})
}

func statusForCode(code string) int {
	switch code {
	case domain.CodeInvalidRequest, domain.CodeValidation, domain.CodeInvalidFile:
		return http.StatusBadRequest
	case domain.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case domain.CodeAccessDenied:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeServiceUnavailable, domain.CodeNetwork:
		return http.StatusServiceUnavailable
	case domain.CodeModelTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
