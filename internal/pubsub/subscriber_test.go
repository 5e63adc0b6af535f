package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisSubscriber_DeliversMatchingPublication(t *testing.T) {
	mr, client := setupMiniredis(t)
	sub := NewRedisSubscriber(client, nil)
	defer sub.Close()

	var mu sync.Mutex
	var gotChannel, gotPayload string
	received := make(chan struct{})

	err := sub.Subscribe(context.Background(), "__keyspace@0__:*", func(channel, payload string) {
		mu.Lock()
		gotChannel, gotPayload = channel, payload
		mu.Unlock()
		close(received)
	})
	require.NoError(t, err)

	mr.Publish("__keyspace@0__:k1", "expired")

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publication to be delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "__keyspace@0__:k1", gotChannel)
	assert.Equal(t, "expired", gotPayload)
}

func TestRedisSubscriber_UnsubscribeStopsDelivery(t *testing.T) {
	mr, client := setupMiniredis(t)
	sub := NewRedisSubscriber(client, nil)
	defer sub.Close()

	var calls int
	var mu sync.Mutex

	err := sub.Subscribe(context.Background(), "__keyspace@0__:*", func(channel, payload string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)

	require.NoError(t, sub.Unsubscribe(context.Background(), "__keyspace@0__:*"))

	mr.Publish("__keyspace@0__:k1", "expired")

	// Give any in-flight goroutine a chance to exit before asserting.
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestRedisSubscriber_UnsubscribeUnknownPatternIsNoOp(t *testing.T) {
	_, client := setupMiniredis(t)
	sub := NewRedisSubscriber(client, nil)
	defer sub.Close()

	assert.NoError(t, sub.Unsubscribe(context.Background(), "never-subscribed:*"))
}
