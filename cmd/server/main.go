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

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/internal/api/handler"
	"github.com/STAYCALM1234/mabest-alum/internal/api/router"
	"github.com/STAYCALM1234/mabest-alum/internal/repository"
	"github.com/STAYCALM1234/mabest-alum/internal/service"
	"github.com/STAYCALM1234/mabest-alum/pkg/database"
	"github.com/STAYCALM1234/mabest-alum/pkg/events"
	"github.com/STAYCALM1234/mabest-alum/pkg/jwt"
	applogger "github.com/STAYCALM1234/mabest-alum/pkg/logger"
	"github.com/STAYCALM1234/mabest-alum/pkg/redis"
	"github.com/STAYCALM1234/mabest-alum/pkg/storage"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("ALUMNI_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// 4. redis is optional: without it sign-out cannot revoke and rate limiting is off
	var (
		rdb     *redis.Client
		revoker service.TokenRevoker
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, session revocation disabled", zap.Error(err))
			rdb = nil
		} else {
			revoker = rdb
		}
	}

	// 5. object storage
	store, err := storage.New(&cfg.Storage)
	if err != nil {
		logger.Fatal("init object storage", zap.Error(err))
	}
	var files http.FileSystem
	if local, ok := store.(*storage.LocalStore); ok {
		files = local.HTTPFileSystem()
	}

	// 6. approval events
	publisher := events.NewPublisher(&cfg.Events, logger)

	// 7. repository → service → handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, revoker, store, publisher, logger)
	h := handler.NewHandler(svc)

	engine := router.Setup(cfg, h, router.Deps{
		JWT:      jwtMgr,
		Redis:    rdb,
		Resolver: svc.Session,
		DB:       db,
		Files:    files,
	}, logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second, // uploads
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Error("close event publisher", zap.Error(err))
	}
	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("stopped")
}
