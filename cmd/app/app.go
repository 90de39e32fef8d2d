package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/inventory-api/internal/api"
	"github.com/vietanh2810/inventory-api/internal/config"
	"github.com/vietanh2810/inventory-api/internal/db"
	"github.com/vietanh2810/inventory-api/internal/logger"
	"github.com/vietanh2810/inventory-api/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.Log.Level); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	conf.WatchLogLevel(func(level string) {
		if err := logger.SetLevel(level); err != nil {
			zap.L().Warn("ignoring invalid log level", zap.String("level", level), zap.Error(err))
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, conf.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing -> %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			zap.L().Warn("tracing shutdown", zap.Error(err))
		}
	}()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	var redisClient *redis.Client
	if conf.Redis.URL != "" {
		if redisClient, err = db.OpenRedis(conf.Redis.URL); err != nil {
			return fmt.Errorf("failed to initialize redis -> %w", err)
		}
		defer redisClient.Close()
	} else {
		zap.L().Info("redis.url not set, rate limiting in memory")
	}

	s, err := api.NewServer(conf, postgresDB, redisClient)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}
