// ===========================================================================
// DEMO ENTRYPOINT
// ===========================================================================
//
// Wires one Listener to a live Redis connection, logs its identity and
// database index, and on shutdown logs how many events it received and
// dispatched. Not a deployable service on its own — a
// real application embeds internal/cache directly behind its own
// local-vs-remote read path.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Tungtt2020/StackRedis.L1/internal/cache"
	"github.com/Tungtt2020/StackRedis.L1/internal/config"
	"github.com/Tungtt2020/StackRedis.L1/internal/pubsub"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Addr(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.Timeout,
	})
	defer func() { _ = client.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}

	sub := pubsub.NewRedisSubscriber(client, logger)
	defer func() { _ = sub.Close() }()

	identity := cache.NewProcessIdentity()
	listener := cache.NewListener(sub, identity, cfg.DBIndex,
		cache.WithLogger(logger),
		cache.WithPrometheus(),
	)

	db := cache.NewDatabase(
		cache.NewMemoryCache(),
		cache.NewMemoryHashes(),
		cache.NewMemorySets(),
		cache.NewMemorySortedSets(),
	)
	listener.Register(db)

	if err := listener.Start(ctx); err != nil {
		logger.Fatal("failed to start listener", zap.Error(err))
	}
	defer func() { _ = listener.Close(context.Background()) }()

	logger.Info("l1cached listener running",
		zap.String("identity", identity.Current()),
		zap.Int("db_index", cfg.DBIndex),
	)

	<-ctx.Done()
	logger.Info("l1cached shutting down",
		zap.Int64("events_received", listener.Metrics().Received()),
		zap.Int64("events_dispatched", listener.Metrics().Dispatched()),
	)
}
