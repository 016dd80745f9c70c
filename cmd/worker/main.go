// Package main is the entry point for the woodline background worker.
// It relays committed outbox events to Redis and runs housekeeping.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"woodline/internal/infrastructure/metrics"
	"woodline/internal/infrastructure/notify"
	"woodline/internal/infrastructure/storage/postgres"
	"woodline/pkg/config"
	"woodline/pkg/logger"
)

const outboxRetention = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.AppEnv == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting woodline worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalw("failed to ping redis", "error", err)
	}

	worker := NewWorker(cfg, pool, redisClient, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker relays outbox events and cleans up expired state.
type Worker struct {
	cfg   *config.Config
	pool  *postgres.Pool
	relay *postgres.OutboxRelay
	store *postgres.IdempotencyStore
	log   *logger.Logger
}

// NewWorker creates the worker with its relay and cleanup dependencies.
func NewWorker(cfg *config.Config, pool *postgres.Pool, redisClient *redis.Client, log *logger.Logger) *Worker {
	publisher := notify.NewRedisPublisher(redisClient)
	txManager := postgres.NewTxManager(pool)

	return &Worker{
		cfg:   cfg,
		pool:  pool,
		relay: postgres.NewOutboxRelay(pool.Pool, cfg.OutboxBatchSize, publisher),
		store: postgres.NewIdempotencyStore(pool, txManager, cfg.IdempotencyTTL),
		log:   log.WithComponent("worker"),
	}
}

// Run polls the outbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.OutboxPollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	published, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		metrics.ObserveOutboxFailure()
		w.log.Errorw("outbox batch failed", "error", err)
		return
	}
	if published > 0 {
		metrics.ObserveOutboxPublished(published)
		w.log.Debugw("published outbox batch", "count", published)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	if purged, err := w.relay.PurgePublished(ctx, outboxRetention); err != nil {
		w.log.Errorw("outbox purge failed", "error", err)
	} else if purged > 0 {
		w.log.Infow("purged published outbox events", "count", purged)
	}

	if removed, err := w.store.CleanupExpired(ctx); err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
	} else if removed > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", removed)
	}
}
