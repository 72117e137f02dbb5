package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan() SlotPlan {
	return SlotPlan{Open: "09:00", Close: "10:30", Interval: 30 * time.Minute}
}

func TestSlotPlan_Times(t *testing.T) {
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, testPlan().Times())

	hourly := SlotPlan{Open: "09:00", Close: "12:00", Interval: time.Hour}
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, hourly.Times())

	assert.Nil(t, SlotPlan{Open: "12:00", Close: "09:00", Interval: time.Hour}.Times())
	assert.Nil(t, SlotPlan{Open: "bogus", Close: "10:00", Interval: time.Hour}.Times())
}

func TestScheduleCache_SeedsOnMiss(t *testing.T) {
	_, rdb := newTestRedis(t)
	sched := NewScheduleCache(rdb, time.Minute, testPlan())
	ctx := context.Background()

	slots, err := sched.AvailableSlots(ctx, 1, "2025-11-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, slots)

	// Seeded view is cached with the configured TTL.
	ttl, err := rdb.TTL(ctx, schedKey(1, "2025-11-15")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestScheduleCache_RemoveSlotInvalidatesImmediately(t *testing.T) {
	_, rdb := newTestRedis(t)
	sched := NewScheduleCache(rdb, time.Hour, testPlan())
	ctx := context.Background()

	_, err := sched.AvailableSlots(ctx, 1, "2025-11-15")
	require.NoError(t, err)

	require.NoError(t, sched.RemoveSlot(ctx, 1, "2025-11-15", "10:00"))

	// The hour-long parent TTL must not matter: the view was dropped and the
	// slot hash says booked.
	slots, err := sched.AvailableSlots(ctx, 1, "2025-11-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, slots)
}

func TestScheduleCache_StaleViewStillExcludesBookedSlot(t *testing.T) {
	_, rdb := newTestRedis(t)
	sched := NewScheduleCache(rdb, time.Hour, testPlan())
	ctx := context.Background()

	// Warm the view, then book the slot behind its back (no invalidation).
	_, err := sched.AvailableSlots(ctx, 1, "2025-11-15")
	require.NoError(t, err)
	require.NoError(t, rdb.HSet(ctx, slotKey(1, "2025-11-15", "09:30"), "status", "booked").Err())

	slots, err := sched.AvailableSlots(ctx, 1, "2025-11-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, slots, "cached view is an index, not truth")
}

func TestScheduleCache_AddSlotRestoresAvailability(t *testing.T) {
	_, rdb := newTestRedis(t)
	sched := NewScheduleCache(rdb, time.Minute, testPlan())
	ctx := context.Background()

	require.NoError(t, sched.RemoveSlot(ctx, 1, "2025-11-15", "10:00"))
	require.NoError(t, sched.AddSlot(ctx, 1, "2025-11-15", "10:00"))

	slots, err := sched.AvailableSlots(ctx, 1, "2025-11-15")
	require.NoError(t, err)
	assert.Contains(t, slots, "10:00")

	// Slot hashes never expire; only the derived view does.
	ttl, err := rdb.TTL(ctx, slotKey(1, "2025-11-15", "10:00")).Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)
}

func TestScheduleCache_CachedViewIsReused(t *testing.T) {
	_, rdb := newTestRedis(t)
	sched := NewScheduleCache(rdb, time.Minute, testPlan())
	ctx := context.Background()

	_, err := sched.AvailableSlots(ctx, 1, "2025-11-15")
	require.NoError(t, err)

	// Overwrite the cached view; a hit must use it rather than reseed.
	custom := `{"date":"2025-11-15","slots":{"07:00":"free","08:00":"booked"}}`
	require.NoError(t, rdb.Set(ctx, schedKey(1, "2025-11-15"), custom, time.Minute).Err())

	slots, err := sched.AvailableSlots(ctx, 1, "2025-11-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"07:00"}, slots)
}
