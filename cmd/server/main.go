package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nursultanov/user-dashboard/config"
	"github.com/nursultanov/user-dashboard/internal/cleanup"
	"github.com/nursultanov/user-dashboard/internal/email"
	"github.com/nursultanov/user-dashboard/internal/health"
	"github.com/nursultanov/user-dashboard/internal/infrastructure/postgres"
	ctxlog "github.com/nursultanov/user-dashboard/internal/log"
	"github.com/nursultanov/user-dashboard/internal/metrics"
	httptransport "github.com/nursultanov/user-dashboard/internal/transport/http"
	"github.com/nursultanov/user-dashboard/internal/transport/http/handler"
	"github.com/nursultanov/user-dashboard/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		stop()
		log.Fatalf("migrate: %v", err)
	}

	// Users
	userRepo := postgres.NewUserRepository(pool)
	userUsecase := usecase.NewUsers(userRepo)
	userHandler := handler.NewUserHandler(userUsecase, logger)

	// Auth
	accountRepo := postgres.NewAccountRepository(pool)
	revocationRepo := postgres.NewRevocationRepository(pool)
	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuth(
		accountRepo,
		revocationRepo,
		emailSender,
		logger,
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		cfg.PasswordSignUps,
	)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	sweeper := cleanup.NewSweeper(revocationRepo, logger)
	if err := sweeper.Start(ctx); err != nil {
		stop()
		log.Fatalf("cleanup: %v", err)
	}

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, userHandler, authHandler, authUsecase),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
