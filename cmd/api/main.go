package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/generation"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/jobs"
	"server/internal/providers/bedrock"
	"server/internal/storage"
)

// jobMaxAge bounds how long finished and abandoned jobs stay queryable.
const jobMaxAge = time.Hour

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	db, err := infra.OpenDB(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	client, err := bedrock.NewClient(ctx, bedrock.Options{
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Region:          cfg.AWSRegion,
		AssumeRoleARN:   cfg.AssumeRoleARN,
		Logger:          &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build bedrock client")
	}

	store, err := storage.NewFileStore(cfg.MediaPath, cfg.MaxFileSizeBytes())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare media storage")
	}
	downloader := storage.NewDownloader(s3.NewFromConfig(client.AWSConfig()), store)

	registry := jobs.NewRegistry()
	history := repo.NewHistoryRepository(db)

	svc := generation.NewService(generation.Options{
		Invoker:         client,
		Downloader:      downloader,
		History:         history,
		Registry:        registry,
		Store:           store,
		Logger:          logger,
		OutputS3URI:     "s3://" + cfg.OutputS3Bucket,
		MaxPromptTokens: cfg.MaxPromptTokens,
		Timeout:         cfg.GenerationTimeout,
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.MaxPollAttempts,
	})

	app := handlers.NewApp(svc, history, store, logger)
	router := httpapi.NewRouter(app, logger, []string{cfg.FrontendURL})
	server := infra.NewHTTPServer(cfg, router)

	// Periodic cleanup of finished jobs.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(jobMaxAge)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := registry.Sweep(jobMaxAge); n > 0 {
					logger.Info().Int("removed", n).Msg("job registry sweep")
				}
			}
		}
	}()

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
