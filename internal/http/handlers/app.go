// Package handlers holds the HTTP endpoints. Every handler hangs off App,
// which carries the services the endpoints call.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/storage"
)

// Generator is the generation service surface the endpoints use.
type Generator interface {
	TextToVideo(ctx context.Context, prompt string, params domain.GenerationParams) (*domain.GenerationResult, error)
	ImageToVideo(ctx context.Context, image []byte, sourcePath, prompt string, params domain.GenerationParams) (*domain.GenerationResult, error)
	TextToImage(ctx context.Context, prompt string, params domain.GenerationParams) (*domain.GenerationResult, error)
	JobStatus(jobID string) (*domain.Job, error)
}

// HistoryStore is the persistence surface behind the history endpoints.
type HistoryStore interface {
	GetHistory(ctx context.Context, limit, offset int) ([]domain.HistoryRecord, error)
	GetByID(ctx context.Context, id string) (*domain.HistoryRecord, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type App struct {
	Generator Generator
	History   HistoryStore
	Store     *storage.FileStore
	Logger    infra.Logger
	Started   time.Time
}

func NewApp(gen Generator, history HistoryStore, store *storage.FileStore, logger infra.Logger) *App {
	return &App{
		Generator: gen,
		History:   history,
		Store:     store,
		Logger:    logger,
		Started:   time.Now(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
