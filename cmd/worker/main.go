package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/scheduling-api/internal/config"
	"github.com/jwalitptl/scheduling-api/internal/handler"
	"github.com/jwalitptl/scheduling-api/internal/repository/postgres"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/messaging/redis"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
	"github.com/jwalitptl/scheduling-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Console:    cfg.Log.Console,
	}).WithFields(map[string]interface{}{"worker_id": generateWorkerID()})

	m := metrics.NewMetrics(cfg.Metrics.Namespace, "worker", prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := postgres.NewDB(connectCtx, cfg.Database)
	if err != nil {
		cancel()
		log.Fatal(err, "failed to connect to database")
	}
	broker, err := redis.NewRedisBroker(connectCtx, redis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
	}, log)
	cancel()
	if err != nil {
		db.Close()
		log.Fatal(err, "failed to connect to Redis")
	}
	defer db.Close()
	defer broker.Close()

	repos := postgres.NewRepositories(db, m)

	processor, err := worker.NewOutboxProcessor(repos.Outbox, broker, worker.OutboxProcessorConfig{
		Channel:       cfg.Redis.Channel,
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: 3,
		RetryDelay:    cfg.Outbox.RetryDelay,
		MaxAttempts:   cfg.Outbox.MaxAttempts,
	}, log, m)
	if err != nil {
		log.Fatal(err, "invalid outbox configuration")
	}
	cleanup := worker.NewOutboxCleanupWorker(repos.Outbox, cfg.Outbox.Retention, cfg.Outbox.CleanupInterval, log)

	// Health and metrics server
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	handler.NewHandler(map[string]handler.Pinger{
		"database": db,
		"redis":    handler.PingFunc(broker.Ping),
	}, prometheus.DefaultGatherer).RegisterRoutes(engine, cfg.Metrics.Path)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Outbox.HealthPort),
		Handler: engine,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()

	go func() {
		log.Info("starting health server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "health server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "health server forced to shutdown")
	}
	wg.Wait()

	log.Info("worker exited properly")
}

func generateWorkerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}
