// Package pubsub adapts a real Redis connection into the cache package's
// Subscriber interface, so the invalidation listener can run against a
// live (or miniredis-backed) keyspace-notification stream.
package pubsub

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSubscriber implements cache.Subscriber on top of a *redis.Client's
// pattern-subscribe API. Each call to Subscribe opens its own PubSub
// connection and runs a receive loop on its own goroutine; Unsubscribe
// tears that connection down.
type RedisSubscriber struct {
	client *redis.Client
	logger *zap.Logger

	mu   sync.Mutex
	subs map[string]*redis.PubSub
}

// NewRedisSubscriber wraps an existing *redis.Client. A nil logger is
// replaced with zap.NewNop().
func NewRedisSubscriber(client *redis.Client, logger *zap.Logger) *RedisSubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSubscriber{
		client: client,
		logger: logger,
		subs:   make(map[string]*redis.PubSub),
	}
}

// Subscribe installs a pattern subscription and starts forwarding every
// matching publication to handler on a dedicated goroutine. handler must
// be non-blocking and must not perform network I/O, matching the
// invalidation listener's concurrency contract.
func (r *RedisSubscriber) Subscribe(ctx context.Context, pattern string, handler func(channel, payload string)) error {
	ps := r.client.PSubscribe(ctx, pattern)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("subscribe to %s: %w", pattern, err)
	}

	r.mu.Lock()
	r.subs[pattern] = ps
	r.mu.Unlock()

	ch := ps.Channel()
	go func() {
		for msg := range ch {
			handler(msg.Channel, msg.Payload)
		}
	}()

	r.logger.Debug("subscribed to pattern", zap.String("pattern", pattern))
	return nil
}

// Unsubscribe tears down the subscription installed for pattern. Calling
// it for a pattern that was never subscribed is a no-op.
func (r *RedisSubscriber) Unsubscribe(ctx context.Context, pattern string) error {
	r.mu.Lock()
	ps, ok := r.subs[pattern]
	if ok {
		delete(r.subs, pattern)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}

	if err := ps.PUnsubscribe(ctx, pattern); err != nil {
		r.logger.Debug("punsubscribe failed", zap.String("pattern", pattern), zap.Error(err))
	}
	return ps.Close()
}

// Close tears down every outstanding subscription.
func (r *RedisSubscriber) Close() error {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]*redis.PubSub)
	r.mu.Unlock()

	var firstErr error
	for _, ps := range subs {
		if err := ps.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
