package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/taskboard/config"
	"github.com/ErlanBelekov/taskboard/internal/auth"
	"github.com/ErlanBelekov/taskboard/internal/health"
	"github.com/ErlanBelekov/taskboard/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/taskboard/internal/log"
	"github.com/ErlanBelekov/taskboard/internal/metrics"
	httptransport "github.com/ErlanBelekov/taskboard/internal/transport/http"
	"github.com/ErlanBelekov/taskboard/internal/transport/http/handler"
	"github.com/ErlanBelekov/taskboard/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.Deployed() {
		gin.SetMode(gin.ReleaseMode)
	}

	// refuse to start without a signing secret
	codec, err := auth.NewTokenCodec([]byte(cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	users := postgres.NewUserRepository(pool)
	tasks := postgres.NewTaskRepository(pool)

	handlers := httptransport.Handlers{
		Auth: handler.NewAuthHandler(usecase.NewAuthUsecase(users, hasher, codec), handler.CookiePolicyFor(cfg.Env), logger),
		User: handler.NewUserHandler(usecase.NewUserUsecase(users, hasher), logger),
		Task: handler.NewTaskHandler(usecase.NewTaskUsecase(tasks), logger),
	}
	opts := httptransport.Options{
		ClientOrigin: cfg.ClientOrigin,
		HSTS:         cfg.Deployed(),
		APILimit:     cfg.APIRateLimit,
		APIWindow:    cfg.APIRateWindow,
		AuthLimit:    cfg.AuthRateLimit,
		AuthWindow:   cfg.AuthRateWindow,
	}

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, health.Dependency{Name: "postgres", Pinger: pool})

	api := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, opts, handlers, codec, users),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ops := metrics.NewServer(":"+cfg.MetricsPort, checker)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server started", "port", cfg.Port, "env", cfg.Env)
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}
	stop()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown", "error", err)
	}
	if err := ops.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	return serveErr
}

// newLogger: tint in local development, JSON everywhere else. Both are wrapped
// so request-scoped ids land on every line.
func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{Level: level, TimeFormat: time.Kitchen})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
