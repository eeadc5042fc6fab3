// Package httpapi assembles the HTTP routing table.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

// NewRouter wires the middleware chain and every API route.
func NewRouter(app *handlers.App, logger infra.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Recover(logger),
		middleware.Logger(logger),
		middleware.CORS(allowedOrigins),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", app.Health)

		r.Route("/generate", func(r chi.Router) {
			r.Post("/text-to-video", app.GenerateTextToVideo)
			r.Post("/image-to-video", app.GenerateImageToVideo)
			r.Post("/text-to-image", app.GenerateTextToImage)
			r.Get("/status/{jobID}", app.GenerateStatus)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", app.HistoryList)
			r.Delete("/{id}", app.HistoryDelete)
		})

		r.Get("/media/{filename}", app.MediaServe)
		r.Post("/prompt/enhance", app.PromptEnhance)
	})

	return r
}
