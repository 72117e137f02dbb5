package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"venuebook/internal/domain"
)

// VenueScore is one row of the popularity ranking.
type VenueScore struct {
	VenueID int64
	Score   float64
}

// VenueCache holds read-mostly venue snapshots and the global popularity
// ranking. Snapshots expire by TTL only; the durable store stays the source
// of truth.
type VenueCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewVenueCache(rdb *redis.Client, ttl time.Duration) *VenueCache {
	return &VenueCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached snapshot, or nil on a miss.
func (c *VenueCache) Get(ctx context.Context, venueID int64) (*domain.Venue, error) {
	raw, err := c.rdb.Get(ctx, venueKey(venueID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var v domain.Venue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *VenueCache) Set(ctx context.Context, v *domain.Venue) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, venueKey(v.ID), data, c.ttl).Err()
}

// IncrementPopularity bumps the venue's ranking score by one booking.
func (c *VenueCache) IncrementPopularity(ctx context.Context, venueID int64) error {
	return c.rdb.ZIncrBy(ctx, popularityKey, 1, strconv.FormatInt(venueID, 10)).Err()
}

// TopVenues returns up to n venues by descending score.
func (c *VenueCache) TopVenues(ctx context.Context, n int64) ([]VenueScore, error) {
	rows, err := c.rdb.ZRevRangeWithScores(ctx, popularityKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]VenueScore, 0, len(rows))
	for _, z := range rows {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, VenueScore{VenueID: id, Score: z.Score})
	}
	return out, nil
}
