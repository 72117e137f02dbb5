package queue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConfirmFunc runs the lock-and-confirm booking sequence for one normalized
// entry. It must be idempotent under redelivery: the atomic confirm rejects
// an already-booked slot instead of mutating it twice.
type ConfirmFunc func(ctx context.Context, req ConfirmRequest) error

// Worker is one named member of the consumer group competing for stream
// entries. Entries are acknowledged only after a successful confirm; anything
// else stays pending for redelivery or operator inspection.
type Worker struct {
	rdb      *redis.Client
	stream   string
	group    string
	consumer string
	batch    int64
	block    time.Duration
	confirm  ConfirmFunc
	log      *log.Logger
}

type WorkerOptions struct {
	Stream   string
	Group    string
	Consumer string
	Batch    int64
	Block    time.Duration
}

func NewWorker(rdb *redis.Client, opts WorkerOptions, confirm ConfirmFunc, logger *log.Logger) *Worker {
	if opts.Batch <= 0 {
		opts.Batch = 10
	}
	if opts.Block <= 0 {
		opts.Block = 5 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Worker{
		rdb:      rdb,
		stream:   opts.Stream,
		group:    opts.Group,
		consumer: opts.Consumer,
		batch:    opts.Batch,
		block:    opts.Block,
		confirm:  confirm,
		log:      logger,
	}
}

// Run consumes until ctx is cancelled. Failure to create the consumer group
// is fatal; a single entry's failure never stops the loop.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.EnsureGroup(ctx); err != nil {
		return fmt.Errorf("create consumer group %s on %s: %w", w.group, w.stream, err)
	}
	w.log.Printf("worker started stream=%s group=%s consumer=%s", w.stream, w.group, w.consumer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.group,
			Consumer: w.consumer,
			Streams:  []string{w.stream, ">"},
			Count:    w.batch,
			Block:    w.block,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Printf("read group: %v", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				w.Handle(ctx, msg)
			}
		}
	}
}

// EnsureGroup creates the consumer group, creating the stream alongside it if
// needed. An already-existing group is fine.
func (w *Worker) EnsureGroup(ctx context.Context) error {
	err := w.rdb.XGroupCreateMkStream(ctx, w.stream, w.group, "$").Err()
	if err != nil && strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// Handle normalizes and confirms a single claimed entry, acknowledging it
// only on success.
func (w *Worker) Handle(ctx context.Context, msg redis.XMessage) {
	req, err := decodeEntry(msg.Values)
	if err != nil {
		// Left unacknowledged on purpose: a malformed entry is an operator
		// problem, not something to silently discard.
		w.log.Printf("skip %s: %v", msg.ID, err)
		return
	}

	if err := w.confirm(ctx, req); err != nil {
		w.log.Printf("entry %s failed (venue=%d %s %s user=%d): %v",
			msg.ID, req.VenueID, req.Date, req.StartTime, req.UserID, err)
		return
	}

	if err := w.rdb.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
		w.log.Printf("ack %s: %v", msg.ID, err)
		return
	}
	w.log.Printf("confirmed %s venue=%d %s %s user=%d",
		msg.ID, req.VenueID, req.Date, req.StartTime, req.UserID)
}
