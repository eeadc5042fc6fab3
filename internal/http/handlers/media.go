package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/storage"
)

func (a *App) MediaServe(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	path, ok := a.Store.Resolve(filename)
	if !ok {
		a.error(w, domain.NewNotFound("Media file not found"))
		return
	}
	w.Header().Set("Content-Type", storage.MIMETypeFor(filename))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}
