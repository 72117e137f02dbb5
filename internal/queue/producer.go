package queue

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Producer appends confirmation requests to the booking stream. Appends are
// fire-and-forget from the caller's perspective; the returned id is the
// stream-assigned, monotonically increasing entry id.
type Producer struct {
	rdb    *redis.Client
	stream string
}

func NewProducer(rdb *redis.Client, stream string) *Producer {
	return &Producer{rdb: rdb, stream: stream}
}

func (p *Producer) Enqueue(ctx context.Context, req ConfirmRequest) (string, error) {
	duration := req.Duration
	if duration < 1 {
		duration = 1
	}

	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event":    "confirm",
			"venue_id": strconv.FormatInt(req.VenueID, 10),
			"date":     req.Date,
			"time":     req.StartTime,
			"user_id":  strconv.FormatInt(req.UserID, 10),
			"duration": strconv.Itoa(duration),
		},
	}).Result()
}
