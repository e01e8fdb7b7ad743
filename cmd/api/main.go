package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"studio/internal/generation"
	"studio/internal/history"
	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/intake"
	"studio/internal/providers/mock"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	medium, closeMedium, err := history.OpenMedium(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.HistoryBackend).Msg("failed to open history medium")
	}
	defer closeMedium()

	store := history.NewStore(medium, history.Options{Key: cfg.HistoryKey, Logger: &logger})
	client := mock.NewClient(mock.Options{
		FailureRate: cfg.MockFailureRate,
		MinLatency:  cfg.MockMinLatency,
		MaxLatency:  cfg.MockMaxLatency,
		Logger:      &logger,
	})
	ctrl := generation.NewController(generation.Options{
		Client:  client,
		History: store,
		Logger:  &logger,
	})
	uploads := intake.New(intake.Options{MaxBytes: cfg.MaxUploadBytes, Logger: &logger})

	app := handlers.NewApp(ctrl, store, uploads, &logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMin:    cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("backend", cfg.HistoryBackend).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	ctrl.Cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
