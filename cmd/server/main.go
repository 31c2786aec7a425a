package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/resulta/resulta-gateway/internal/config"
	"github.com/resulta/resulta-gateway/internal/database"
	"github.com/resulta/resulta-gateway/internal/handler"
	"github.com/resulta/resulta-gateway/internal/logger"
	"github.com/resulta/resulta-gateway/internal/middleware"
	"github.com/resulta/resulta-gateway/internal/notify"
	"github.com/resulta/resulta-gateway/internal/repository"
	"github.com/resulta/resulta-gateway/internal/router"
	"github.com/resulta/resulta-gateway/internal/service"
	"github.com/resulta/resulta-gateway/internal/store"
	"github.com/resulta/resulta-gateway/internal/upstream"
	"github.com/resulta/resulta-gateway/internal/validator"
	"github.com/resulta/resulta-gateway/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("upstream", cfg.UpstreamBaseURL).
		Msg("Starting Resulta Gateway")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Upstream Records API ─────────────────────────────────────────
	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, log)

	// ─── Notification Delta Engine ────────────────────────────────────
	notifRepo := repository.NewNotificationRepository(pool)
	watermarks := store.NewRedisKV(rdb, "resulta:")
	engine := notify.NewEngine(watermarks, notifRepo, log)
	subscribers := notify.NewSubscribers(rdb, notify.FeedNews)

	// ─── Initialize Services ──────────────────────────────────────────
	resultService := service.NewResultService(client, rdb, cfg.RecordCacheTTL, cfg.RefreshDebounce, log)
	newsService := service.NewNewsService(client, engine, subscribers, log)
	notificationService := service.NewNotificationService(engine, notifRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Result:       handler.NewResultHandler(resultService),
		News:         handler.NewNewsHandler(newsService),
		Notification: handler.NewNotificationHandler(notificationService),
		UIConfig:     handler.NewUIConfigHandler(cfg),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	newsPoller := worker.NewNewsPoller(client, engine, subscribers, cfg.UpstreamServiceToken, cfg.NewsPollInterval, log)
	go newsPoller.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	// Refresh triggers are user initiated and cheap to abuse; keep a
	// conservative per-IP limit on them.
	refreshLimiter := middleware.NewRateLimiter(30, time.Minute)
	r := router.SetupRouter(handlers, cfg, refreshLimiter)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the poller, the limiter's cleanup loop and flush pending
	// refresh triggers.
	workerCancel()
	refreshLimiter.Stop()
	resultService.Shutdown()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
