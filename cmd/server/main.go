// @title Voxform API
// @version 1.0
// @description Voice-to-form extraction service.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin token as "Bearer {token}"
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"voxform/internal/app"
	"voxform/internal/config"
	"voxform/internal/handler"
	"voxform/internal/logger"
	"voxform/internal/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn(context.Background(), "shutdown: closing application", "error", err)
		}
	}()

	// Initialize handlers
	svc := a.Service
	handlers := router.Handlers{
		Speech:   handler.NewSpeechHandler(svc, cfg.Limits.MaxAudioBytes),
		Stream:   handler.NewStreamHandler(svc, a.Metrics, cfg.Limits.MaxAudioBytes, cfg.CORS.AllowedOrigins),
		Form:     handler.NewFormHandler(svc),
		Provider: handler.NewProviderHandler(svc),
		Admin:    handler.NewAdminHandler(svc),
		Health:   handler.NewHealthHandler(svc),
	}

	// Setup router
	r := router.Setup(cfg, a.Tokens, a.Metrics, handlers)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "addr", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
