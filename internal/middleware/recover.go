package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover converts panics into a 500 with the standard error envelope so
// one bad request cannot take the process down.
func Recover(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.Error().
						Interface("panic", rec).
						Bytes("stack", debug.Stack()).
						Str("request_id", RequestIDFromContext(r.Context())).
						Msgf("panic handling %s %s", r.Method, r.URL.Path)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"An unexpected error occurred. Please try again later.","retryable":true}}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
