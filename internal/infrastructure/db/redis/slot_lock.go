package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/qubehealth/appointments-api/internal/core/domain"
)

const (
	defaultLockTTL = 5 * time.Second
	retryInterval  = 25 * time.Millisecond
	releaseTimeout = 2 * time.Second
)

// releaseScript deletes the lock only while it still holds the caller's token,
// so an expired lock re-acquired by another writer is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SlotLocker provides a cross-instance lock per doctor slot backed by Redis.
// Key format: slotlock:<doctor_id>:<unix_nanos>
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlotLocker creates a SlotLocker. A non-positive ttl falls back to defaultLockTTL.
func NewSlotLocker(client *redis.Client, ttl time.Duration) *SlotLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &SlotLocker{client: client, ttl: ttl}
}

// Lock polls SET NX until the slot is free or ctx is done.
func (l *SlotLocker) Lock(ctx context.Context, slot domain.Slot) (func(), error) {
	key := lockKey(slot)
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("slot lock: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("slot lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *SlotLocker) releaser(key, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		// A failed release is left to expire after ttl.
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
}

func lockKey(slot domain.Slot) string {
	return "slotlock:" + slot.Key()
}
