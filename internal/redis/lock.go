package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"bloodconnect/internal/model"
)

const (
	// DispatchLockPrefix namespaces in-flight dispatch keys
	DispatchLockPrefix = "dispatch:inflight:"

	// DefaultDispatchLockTTL caps how long a crashed holder blocks a key
	DefaultDispatchLockTTL = 30 * time.Second
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired holder cannot release a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DispatchLock is a SET NX PX lock per dedup key. It narrows the window
// where two replicas both pass the ledger check and both send; the ledger
// remains the authority on what was sent.
type DispatchLock struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewDispatchLock(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *DispatchLock {
	if ttl <= 0 {
		ttl = DefaultDispatchLockTTL
	}
	return &DispatchLock{client: client, ttl: ttl, log: logger}
}

// Acquire takes the lock for key or fails with model.ErrDispatchInProgress.
func (l *DispatchLock) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := DispatchLockPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire dispatch lock: %w", err)
	}
	if !ok {
		return nil, model.ErrDispatchInProgress
	}

	release := func() {
		// Release even if the request context is already done.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("dispatch lock release failed, waiting for ttl")
		}
	}
	return release, nil
}
