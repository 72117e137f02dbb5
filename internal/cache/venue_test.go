package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuebook/internal/domain"
)

func TestVenueCache_ReadThroughRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	vc := NewVenueCache(rdb, 5*time.Minute)
	ctx := context.Background()

	got, err := vc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got, "miss returns nil, not an error")

	v := &domain.Venue{ID: 7, Name: "Grand Hall", Capacity: 200, PricePerHour: 150}
	require.NoError(t, vc.Set(ctx, v))

	got, err = vc.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Grand Hall", got.Name)
	assert.Equal(t, 150.0, got.PricePerHour)

	// Snapshot expires by TTL only.
	mr.FastForward(6 * time.Minute)
	got, err = vc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVenueCache_PopularityRanking(t *testing.T) {
	_, rdb := newTestRedis(t)
	vc := NewVenueCache(rdb, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, vc.IncrementPopularity(ctx, 1))
	}
	require.NoError(t, vc.IncrementPopularity(ctx, 2))
	require.NoError(t, vc.IncrementPopularity(ctx, 3))
	require.NoError(t, vc.IncrementPopularity(ctx, 3))

	top, err := vc.TopVenues(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, VenueScore{VenueID: 1, Score: 3}, top[0])
	assert.Equal(t, VenueScore{VenueID: 3, Score: 2}, top[1])

	// Strictly descending scores.
	all, err := vc.TopVenues(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i].Score, all[i-1].Score)
	}

	// Same query twice is deterministically reproducible.
	again, err := vc.TopVenues(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, all, again)
}
