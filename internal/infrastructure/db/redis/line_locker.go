package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

// lockTTL sits slightly above the market API request timeout so a crashed
// holder cannot block a line forever.
const lockTTL = 35 * time.Second

// unlockScript deletes the key only if it still holds the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LineLocker provides per-key mutual exclusion backed by Redis SET NX.
// Key format: lock:<key>
type LineLocker struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.LineLocker = (*LineLocker)(nil)

// NewLineLocker creates a LineLocker. lockTTL is used when ttl <= 0.
func NewLineLocker(client *redis.Client, ttl time.Duration) *LineLocker {
	if ttl <= 0 {
		ttl = lockTTL
	}
	return &LineLocker{client: client, ttl: ttl}
}

// TryLock acquires key without waiting. ok is false when another holder has it.
func (l *LineLocker) TryLock(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKey(key), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock releases key if token still owns it.
func (l *LineLocker) Unlock(ctx context.Context, key, token string) error {
	if err := unlockScript.Run(ctx, l.client, []string{lockKey(key)}, token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

func lockKey(key string) string {
	return "lock:" + key
}
