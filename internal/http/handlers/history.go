package handlers

import (
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

type historyResponse struct {
	Items  []domain.HistoryRecord `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := a.History.GetHistory(r.Context(), limit, offset)
	if err != nil {
		a.error(w, domain.NewInternalError(err))
		return
	}
	total, err := a.History.Count(r.Context())
	if err != nil {
		a.error(w, domain.NewInternalError(err))
		return
	}
	if items == nil {
		items = []domain.HistoryRecord{}
	}
	a.json(w, http.StatusOK, historyResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (a *App) HistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := a.History.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, domain.NewNotFound("History record not found"))
			return
		}
		a.error(w, domain.NewInternalError(err))
		return
	}

	deleted, err := a.History.DeleteByID(r.Context(), id)
	if err != nil {
		a.error(w, domain.NewInternalError(err))
		return
	}
	if !deleted {
		a.error(w, domain.NewNotFound("History record not found"))
		return
	}

	// Best-effort removal of the backing media file. The row is already
	// gone, so a failure here only leaves an orphaned file behind.
	if name := mediaFilename(record.MediaURL); name != "" {
		if !a.Store.Remove(name) {
			a.Logger.Warn().Str("filename", name).Msg("history: media file not removed")
		}
	}

	a.json(w, http.StatusOK, map[string]bool{"success": true})
}

// mediaFilename extracts the stored filename from a servable media URL.
func mediaFilename(mediaURL string) string {
	if !strings.HasPrefix(mediaURL, "/api/media/") {
		return ""
	}
	return path.Base(mediaURL)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
