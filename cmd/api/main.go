package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/techinvestorai/techinvestor-backend/config"
	"github.com/techinvestorai/techinvestor-backend/internal/bootstrap"
	"github.com/techinvestorai/techinvestor-backend/internal/logging"
	cronjob "github.com/techinvestorai/techinvestor-backend/internal/marketdata/cron"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	bootstrap.SetGinMode(cfg.App.Environment)

	// Prices are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := bootstrap.OpenBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open backends")
	}
	defer backends.Close()

	v1, err := bootstrap.BuildServices(ctx, cfg, backends, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build services")
	}
	if err := v1.Sessions.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start session manager")
	}
	defer v1.Sessions.Close()

	scheduler := cronjob.NewScheduler(cfg.Market.NewsRefreshCron, v1.News, logger.With().Str("component", "cron").Logger())
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start news scheduler")
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: cfg.App.ServiceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
		Health:      backends.Health,
		V1:          v1,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Server.Port).
			Str("env", cfg.App.Environment).
			Str("version", cfg.App.Version).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Session streams only end when the manager closes, so close it before
	// draining the server.
	v1.Sessions.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn().Msg("news refresh still running at shutdown")
	}

	logger.Info().Msg("server stopped")
}
