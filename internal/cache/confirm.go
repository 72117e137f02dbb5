package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotOwner  = errors.New("slot lock not held by caller")
	ErrAlreadyBooked = errors.New("slot already booked")
)

// confirmScript is the only path by which a slot becomes booked. It runs as a
// single unit inside Redis: verify lock ownership, verify current status, mark
// booked, consume the lock, drop the schedule view. No partial application.
var confirmScript = redis.NewScript(`
local owner = redis.call('GET', KEYS[1])
if not owner or owner ~= ARGV[1] then return {err="LOCK_NOT_OWNER"} end
local st = redis.call('HGET', KEYS[2], 'status')
if st == 'booked' then return {err="ALREADY_BOOKED"} end
redis.call('HSET', KEYS[2], 'status', 'booked', 'user_id', ARGV[1], 'updated_at', ARGV[2])
redis.call('DEL', KEYS[1])
redis.call('DEL', KEYS[3])
return "OK"
`)

// Confirmer executes the atomic locked-to-booked transition.
type Confirmer struct {
	rdb *redis.Client
}

func NewConfirmer(rdb *redis.Client) *Confirmer {
	return &Confirmer{rdb: rdb}
}

// Confirm transitions the slot from locked-by-owner to booked-by-owner.
// Returns ErrLockNotOwner if the lock is absent or held by someone else, and
// ErrAlreadyBooked if the slot was booked earlier; in both cases nothing is
// mutated, which is what makes queue redelivery safe.
func (c *Confirmer) Confirm(ctx context.Context, venueID int64, date, start, owner string) error {
	// Seed the slot hash so a first-ever confirm sees an explicit free status.
	if err := c.rdb.HSetNX(ctx, slotKey(venueID, date, start), "status", "free").Err(); err != nil {
		return err
	}

	keys := []string{
		lockKey(venueID, date, start),
		slotKey(venueID, date, start),
		schedKey(venueID, date),
	}
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)

	err := confirmScript.Run(ctx, c.rdb, keys, owner, now).Err()
	if err == nil {
		return nil
	}
	switch {
	case strings.Contains(err.Error(), "LOCK_NOT_OWNER"):
		return ErrLockNotOwner
	case strings.Contains(err.Error(), "ALREADY_BOOKED"):
		return ErrAlreadyBooked
	}
	return err
}
