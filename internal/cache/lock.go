package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it is still held by the releasing
// owner. A plain DEL could remove a lock that expired and was re-acquired by
// someone else between confirm and release.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// LockManager hands out per-slot exclusivity tokens. At most one live lock
// exists per slot key; ownership is proven by value match, never by key
// existence alone.
type LockManager struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLockManager(rdb *redis.Client, ttl time.Duration) *LockManager {
	return &LockManager{rdb: rdb, ttl: ttl}
}

// Acquire sets the lock to owner only if no lock exists, with expiry.
// A false return is the normal "slot is being processed, try later" signal,
// not an error.
func (l *LockManager) Acquire(ctx context.Context, venueID int64, date, start, owner string) (bool, error) {
	return l.rdb.SetNX(ctx, lockKey(venueID, date, start), owner, l.ttl).Result()
}

// Release removes the lock if owner still holds it. Releasing a lock that
// already expired, or that confirm already consumed, is a no-op.
func (l *LockManager) Release(ctx context.Context, venueID int64, date, start, owner string) error {
	return releaseScript.Run(ctx, l.rdb, []string{lockKey(venueID, date, start)}, owner).Err()
}
