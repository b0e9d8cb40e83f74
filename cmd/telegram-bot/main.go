package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"honeyeat/internal/app"
	"honeyeat/internal/config"
	"honeyeat/internal/database"
	"honeyeat/internal/logging"
	"honeyeat/internal/metrics"
	"honeyeat/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.ValidateBot(); err != nil {
		logging.Fatal().Err(err).Msg("invalid bot configuration")
	}

	// 2. Initialize the SQLite database
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	// 3. Initialize Services
	metricsStore := metrics.NewStore(db.SQL)
	application := app.NewFromDB(db, nil)
	sessions := telegram.NewSessionRepository(db.SQL)

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application, sessions, metricsStore)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Post("/webhook", bot.HandleWebhook)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.SQL.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Msg("telegram bot server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	go sweepSessions(sessions)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logging.Error().Err(err).Msg("server forced to shutdown")
	}

	logging.Info().Msg("server exiting")
}

func sweepSessions(sessions *telegram.SessionRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		n, err := sessions.CleanupExpired(context.Background(), time.Now())
		if err != nil {
			logging.Warn().Err(err).Msg("session cleanup failed")
			continue
		}
		logging.Debug().Int64("removed", n).Msg("expired sessions removed")
	}
}
