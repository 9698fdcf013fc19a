// Package main is the entry point for the reservation assistant API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/smilecare-ai/reservation-assistant/internal/app"
	"github.com/smilecare-ai/reservation-assistant/internal/config"
	"github.com/smilecare-ai/reservation-assistant/internal/handler"
	natsclient "github.com/smilecare-ai/reservation-assistant/internal/nats"
	"github.com/smilecare-ai/reservation-assistant/internal/service"
	"github.com/smilecare-ai/reservation-assistant/internal/session"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
	"github.com/smilecare-ai/reservation-assistant/pkg/tracing"
)

func main() {
	cfg := config.Load()

	newLogger := func() (*logger.Logger, error) { return logger.New(cfg.LogLevel) }
	if cfg.Env == "development" {
		newLogger = logger.NewDevelopment
	}
	log, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting reservation assistant", zap.String("env", cfg.Env))

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "reservation-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to build assistant", zap.Error(err))
	}
	defer components.Close()

	store, err := session.New(cfg)
	if err != nil {
		log.Fatal("failed to create session store", zap.Error(err))
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.Warn("session store not reachable yet", zap.String("store", cfg.SessionStore), zap.Error(err))
	}
	cancel()

	// The audit stream is optional; without NATS_URL events only reach SSE clients.
	var (
		natsClient *natsclient.Client
		events     service.EventLog
	)
	if natsCfg := natsclient.ConfigFrom(cfg); natsCfg.Enabled() {
		natsClient, err = natsclient.Connect(ctx, natsCfg, log)
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			log.Fatal("failed to ensure stream", zap.Error(err))
		}
		events = streamManager
	}

	conversations := service.NewConversationService(store, components.Assistant, events, log)

	router := handler.NewRouter(handler.RouterConfig{
		Service:    conversations,
		Roster:     components.Roster,
		NATS:       natsClient,
		Logger:     log,
		JWTSecret:  cfg.JWTSecret,
		RateLimit:  cfg.RateLimitRequests,
		RateWindow: cfg.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
