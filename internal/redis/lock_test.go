package redis_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"bloodconnect/internal/model"
	"bloodconnect/internal/redis"
)

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/1"
	}

	client, err := redis.NewClient(redisURL)
	if err != nil {
		t.Fatalf("Failed to create Redis client: %v", err)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(context.Background())
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestDispatchLockExclusive(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	lock := redis.NewDispatchLock(client.Client, time.Minute, zerolog.Nop())

	release, err := lock.Acquire(ctx, "req-1_donor_to_recipient")
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	if _, err := lock.Acquire(ctx, "req-1_donor_to_recipient"); !errors.Is(err, model.ErrDispatchInProgress) {
		t.Fatalf("second Acquire err = %v, want ErrDispatchInProgress", err)
	}

	// Different key is independent.
	otherRelease, err := lock.Acquire(ctx, "req-1_recipient_to_admin")
	if err != nil {
		t.Fatalf("Acquire other key failed: %v", err)
	}
	otherRelease()

	release()

	again, err := lock.Acquire(ctx, "req-1_donor_to_recipient")
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	again()
}

func TestDispatchLockStaleReleaseKeepsNewHolder(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	lock := redis.NewDispatchLock(client.Client, 50*time.Millisecond, zerolog.Nop())

	staleRelease, err := lock.Acquire(ctx, "req-2_donor_to_recipient")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	holderRelease, err := lock.Acquire(ctx, "req-2_donor_to_recipient")
	if err != nil {
		t.Fatalf("Acquire after expiry failed: %v", err)
	}
	defer holderRelease()

	staleRelease()

	if _, err := lock.Acquire(ctx, "req-2_donor_to_recipient"); !errors.Is(err, model.ErrDispatchInProgress) {
		t.Fatalf("stale release freed the new holder's lock: err = %v", err)
	}
}
