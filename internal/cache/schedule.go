package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Schedule is the cached materialized view of one venue's day. It is an index
// over candidate times, never authoritative truth: availability reads always
// re-check each slot's live status hash.
type Schedule struct {
	Date  string            `json:"date"`
	Slots map[string]string `json:"slots"`
}

// SlotPlan generates the default candidate times seeded on a cache miss.
type SlotPlan struct {
	Open     string // HH:MM
	Close    string // HH:MM
	Interval time.Duration
}

func (p SlotPlan) Times() []string {
	open, err := time.Parse("15:04", p.Open)
	if err != nil {
		return nil
	}
	close, err := time.Parse("15:04", p.Close)
	if err != nil || !close.After(open) {
		return nil
	}
	step := p.Interval
	if step <= 0 {
		step = 30 * time.Minute
	}

	var out []string
	for t := open; t.Before(close); t = t.Add(step) {
		out = append(out, t.Format("15:04"))
	}
	return out
}

// ScheduleCache is the read-through availability cache keyed by (venue, date).
type ScheduleCache struct {
	rdb  *redis.Client
	ttl  time.Duration
	plan SlotPlan
}

func NewScheduleCache(rdb *redis.Client, ttl time.Duration, plan SlotPlan) *ScheduleCache {
	return &ScheduleCache{rdb: rdb, ttl: ttl, plan: plan}
}

// AvailableSlots returns the free times for a venue+date, ascending. On a
// cache miss it seeds the default schedule with the configured TTL. Cached or
// seeded, every candidate is re-checked against its individual slot hash, so
// a booked slot is excluded even while the parent view is stale.
func (s *ScheduleCache) AvailableSlots(ctx context.Context, venueID int64, date string) ([]string, error) {
	key := schedKey(venueID, date)

	var sched Schedule
	raw, err := s.rdb.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		sched = s.seed(date)
		data, merr := json.Marshal(sched)
		if merr != nil {
			return nil, merr
		}
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal([]byte(raw), &sched); err != nil {
			return nil, fmt.Errorf("decode schedule %s: %w", key, err)
		}
	}

	candidates := make([]string, 0, len(sched.Slots))
	for t, st := range sched.Slots {
		if st == "free" {
			candidates = append(candidates, t)
		}
	}
	sort.Strings(candidates)

	out := make([]string, 0, len(candidates))
	for _, t := range candidates {
		st, err := s.rdb.HGet(ctx, slotKey(venueID, date, t), "status").Result()
		if err == redis.Nil || (err == nil && st != "booked") {
			out = append(out, t)
			continue
		}
		if err != nil && err != redis.Nil {
			return nil, err
		}
	}
	return out, nil
}

// RemoveSlot marks a slot booked and invalidates the schedule view.
func (s *ScheduleCache) RemoveSlot(ctx context.Context, venueID int64, date, start string) error {
	return s.setSlotStatus(ctx, venueID, date, start, "booked")
}

// AddSlot marks a slot free again and invalidates the schedule view. This is
// the cancellation path back to availability.
func (s *ScheduleCache) AddSlot(ctx context.Context, venueID int64, date, start string) error {
	return s.setSlotStatus(ctx, venueID, date, start, "free")
}

func (s *ScheduleCache) setSlotStatus(ctx context.Context, venueID int64, date, start, status string) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := s.rdb.HSet(ctx, slotKey(venueID, date, start),
		"status", status,
		"updated_at", now,
	).Err(); err != nil {
		return err
	}
	return s.rdb.Del(ctx, schedKey(venueID, date)).Err()
}

func (s *ScheduleCache) seed(date string) Schedule {
	slots := make(map[string]string)
	for _, t := range s.plan.Times() {
		slots[t] = "free"
	}
	return Schedule{Date: date, Slots: slots}
}
