package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/lodgeworks/booking-saga/internal/client"
	"github.com/lodgeworks/booking-saga/internal/events"
	"github.com/lodgeworks/booking-saga/internal/handler"
	"github.com/lodgeworks/booking-saga/internal/handler/api"
	"github.com/lodgeworks/booking-saga/internal/handler/middleware"
	"github.com/lodgeworks/booking-saga/internal/idempotency"
	"github.com/lodgeworks/booking-saga/internal/infra/cache"
	"github.com/lodgeworks/booking-saga/internal/infra/db"
	"github.com/lodgeworks/booking-saga/internal/infra/lock"
	"github.com/lodgeworks/booking-saga/internal/infra/metrics"
	"github.com/lodgeworks/booking-saga/internal/infra/repo"
	"github.com/lodgeworks/booking-saga/internal/inventoryservice"
	"github.com/lodgeworks/booking-saga/internal/paymentservice"
	"github.com/lodgeworks/booking-saga/internal/pkg/clock"
	"github.com/lodgeworks/booking-saga/internal/pkg/config"
	"github.com/lodgeworks/booking-saga/internal/recovery"
	"github.com/lodgeworks/booking-saga/internal/saga"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

// No DI container here: the dependency graph is small and fixed, and wiring
// it by hand keeps every construction site a grep-able call instead of a
// reflection-driven fx.Provide chain. See DESIGN.md for the reasoning.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := middleware.NewLogger(cfg.Log)
	logger := log.GetSlogLogger()

	pool, cleanupDB, err := db.Connect(cfg.DB)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer cleanupDB()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	clk := clock.NewRealClock()
	m := metrics.New()

	bookingRepo := repo.NewBookingRepository(pool)
	availabilityRepo := repo.NewAvailabilityRepository(pool)
	holdRepo := repo.NewHoldRepository(pool)
	paymentRepo := repo.NewPaymentRepository(pool)
	inventoryIdempotencyRepo := repo.NewInventoryIdempotencyRepository(pool)
	paymentIdempotencyRepo := repo.NewPaymentIdempotencyRepository(pool)

	var inventoryIdempotencyCache idempotency.FastCache
	var paymentIdempotencyCache idempotency.FastCache
	if cfg.Saga.IdempotencyCacheEnabled {
		inventoryIdempotencyCache = cache.NewRedisCache(redisClient, "inventory:idem:", cfg.Saga.IdempotencyCacheTTL)
		paymentIdempotencyCache = cache.NewRedisCache(redisClient, "payment:idem:", cfg.Saga.IdempotencyCacheTTL)
	}

	redisLock := lock.NewRedisLock(redisClient, cfg.Saga.ReservationLockWait, cfg.Saga.ReservationLockLease)
	lockAdapter := lock.NewAdapter(redisLock)

	inventorySvc := inventoryservice.NewService(
		pool, availabilityRepo, holdRepo, inventoryIdempotencyRepo,
		inventoryIdempotencyCache, lockAdapter, clk, cfg.Saga.HoldTTL, m, logger,
	)
	reaper := inventoryservice.NewReaper(pool, availabilityRepo, holdRepo, clk, cfg.Saga.HoldReaperInterval, m, logger)

	gateway := paymentservice.NewSimulatedGateway()
	paymentSvc := paymentservice.NewService(pool, paymentRepo, paymentIdempotencyRepo, paymentIdempotencyCache, gateway, clk, m, logger)

	inventoryAdapter := client.NewInventoryAdapter(inventorySvc, cfg.Saga.RemoteCallTimeout)
	paymentAdapter := client.NewPaymentAdapter(paymentSvc, cfg.Saga.RemoteCallTimeout)

	publisher := events.NewLoggingPublisher(logger)

	orchestrator := saga.NewOrchestrator(pool, bookingRepo, inventoryAdapter, paymentAdapter, publisher, clk, m, logger)

	recoveryWorker := recovery.NewWorker(
		pool, bookingRepo, orchestrator, clk,
		cfg.Saga.RecoveryInterval, cfg.Saga.RecoveryStuckAfter, cfg.Saga.RecoveryGiveUpAfter, logger,
	)

	bookingHandler := api.NewBookingHandler(orchestrator)

	engine := gin.New()
	handler.NewRouter(engine, cfg, bookingHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reaper.Run(ctx)
	go recoveryWorker.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	go func() {
		logger.Info("starting server", "address", srv.Addr, "mode", gin.Mode())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
