package main

import (
	"brainarcade/internal/app"
	"brainarcade/internal/config"
	"brainarcade/internal/logging"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// @title Brain Arcade Engine API
// @version 1.0
// @description Adaptive difficulty and next-activity recommendations for educational mini-games
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey SessionToken
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Logging)

	logging.Info().
		Str("tuning_version", cfg.Tuning.Version).
		Bool("oracle_enabled", cfg.Oracle.IsEnabled()).
		Str("catalog", catalogSource(cfg.Catalog.Path)).
		Msg("starting brainarcade engine")

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize")
	}
	logging.Info().Str("catalog_version", a.Catalog.Version()).Int("games", len(a.Catalog.Games())).Msg("connected to MongoDB and Redis")

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Int("active_sessions", a.Sessions.ActiveCount()).Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server forced to shutdown")
	}
	a.Close(shutdownCtx)

	logging.Info().Msg("server exited")
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
