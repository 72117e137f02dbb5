package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuebook/internal/cache"
	"venuebook/internal/database"
	"venuebook/internal/domain"
	"venuebook/internal/queue"
	"venuebook/internal/repository"
)

type testEnv struct {
	svc        *Service
	mr         *miniredis.Miniredis
	rdb        *redis.Client
	locks      *cache.LockManager
	venueCache *cache.VenueCache
	venues     *repository.VenueRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	// Unique shared-cache name per test so parallel tests don't collide.
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	venueRepo := repository.NewVenueRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	locks := cache.NewLockManager(rdb, time.Minute)
	schedule := cache.NewScheduleCache(rdb, time.Minute, cache.SlotPlan{
		Open: "09:00", Close: "10:30", Interval: 30 * time.Minute,
	})
	confirmer := cache.NewConfirmer(rdb)
	venueCache := cache.NewVenueCache(rdb, 5*time.Minute)
	producer := queue.NewProducer(rdb, "stream:bookings")

	svc := NewService(bookingRepo, venueRepo, locks, schedule, confirmer, venueCache, producer)

	return &testEnv{
		svc:        svc,
		mr:         mr,
		rdb:        rdb,
		locks:      locks,
		venueCache: venueCache,
		venues:     venueRepo,
	}
}

func (e *testEnv) createVenue(t *testing.T, pricePerHour float64) *domain.Venue {
	t.Helper()

	v := &domain.Venue{Name: "Grand Hall", City: "Almaty", Capacity: 200, PricePerHour: pricePerHour}
	require.NoError(t, e.venues.Create(context.Background(), v))
	return v
}

func TestCreateBooking_FullRoundTrip(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.createVenue(t, 100)

	slots, err := env.svc.GetAvailability(ctx, v.ID, "2025-11-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, slots)

	res, err := env.svc.CreateBooking(ctx, CreateBookingRequest{
		VenueID: v.ID, UserID: 1, Date: "2025-11-15", StartTime: "10:00", Duration: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 200.0, res.TotalPrice)
	assert.NotZero(t, res.BookingID)

	slots, err = env.svc.GetAvailability(ctx, v.ID, "2025-11-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, slots)

	// A second user cannot take the booked slot.
	_, err = env.svc.CreateBooking(ctx, CreateBookingRequest{
		VenueID: v.ID, UserID: 2, Date: "2025-11-15", StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Popularity was bumped once.
	top, err := env.venueCache.TopVenues(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, cache.VenueScore{VenueID: v.ID, Score: 1}, top[0])

	// Cancel, slot comes back, rebooking succeeds.
	require.NoError(t, env.svc.CancelBooking(ctx, res.BookingID))

	slots, err = env.svc.GetAvailability(ctx, v.ID, "2025-11-15")
	require.NoError(t, err)
	assert.Contains(t, slots, "10:00")

	_, err = env.svc.CreateBooking(ctx, CreateBookingRequest{
		VenueID: v.ID, UserID: 2, Date: "2025-11-15", StartTime: "10:00",
	})
	require.NoError(t, err)
}

func TestCreateBooking_SlotContended(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.createVenue(t, 100)

	// Another request is mid-flight on the same slot.
	ok, err := env.locks.Acquire(ctx, v.ID, "2025-11-15", "09:00", "999")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.svc.CreateBooking(ctx, CreateBookingRequest{
		VenueID: v.ID, UserID: 1, Date: "2025-11-15", StartTime: "09:00",
	})
	assert.ErrorIs(t, err, ErrSlotContended)

	// The holder's lock survives the rejected attempt.
	key := fmt.Sprintf("lock:slot:%d:2025-11-15:09:00", v.ID)
	got, err := env.rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "999", got)
}

func TestCreateBooking_SlotExpiredLockRecovers(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.createVenue(t, 100)

	ok, err := env.locks.Acquire(ctx, v.ID, "2025-11-15", "09:00", "999")
	require.NoError(t, err)
	require.True(t, ok)

	// Crashed holder: TTL elapses and the slot becomes bookable.
	env.mr.FastForward(2 * time.Minute)

	_, err = env.svc.CreateBooking(ctx, CreateBookingRequest{
		VenueID: v.ID, UserID: 1, Date: "2025-11-15", StartTime: "09:00",
	})
	require.NoError(t, err)
}

func TestCreateBooking_VenueNotFound(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.CreateBooking(context.Background(), CreateBookingRequest{
		VenueID: 12345, UserID: 1, Date: "2025-11-15", StartTime: "09:00",
	})
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestCreateBooking_Validation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	cases := []CreateBookingRequest{
		{VenueID: 1, UserID: 1, Date: "15-11-2025", StartTime: "10:00"},
		{VenueID: 1, UserID: 1, Date: "2025-11-15", StartTime: "10am"},
		{VenueID: 0, UserID: 1, Date: "2025-11-15", StartTime: "10:00"},
		{VenueID: 1, UserID: 0, Date: "2025-11-15", StartTime: "10:00"},
		{VenueID: 1, UserID: 1, Date: "2025-11-15", StartTime: "10:00", Duration: -1},
	}
	for _, req := range cases {
		_, err := env.svc.CreateBooking(ctx, req)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestCreateBooking_OnlyOneConcurrentWinner(t *testing.T) {
	env := setupEnv(t)
	v := env.createVenue(t, 100)

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.CreateBooking(context.Background(), CreateBookingRequest{
				VenueID: v.ID, UserID: int64(i + 1), Date: "2025-11-15", StartTime: "10:00",
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t,
			errors.Is(err, ErrSlotContended) ||
				errors.Is(err, ErrSlotUnavailable) ||
				errors.Is(err, ErrAlreadyBooked),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, wins, "exactly one concurrent attempt may win")
}

func TestCancelBooking_Errors(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.createVenue(t, 50)

	err := env.svc.CancelBooking(ctx, 9999)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	res, err := env.svc.CreateBooking(ctx, CreateBookingRequest{
		VenueID: v.ID, UserID: 1, Date: "2025-11-15", StartTime: "09:00",
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.CancelBooking(ctx, res.BookingID))
	err = env.svc.CancelBooking(ctx, res.BookingID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestGetUserBookings(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	v := env.createVenue(t, 50)

	_, err := env.svc.CreateBooking(ctx, CreateBookingRequest{
		VenueID: v.ID, UserID: 1, Date: "2025-11-15", StartTime: "09:00",
	})
	require.NoError(t, err)
	_, err = env.svc.CreateBooking(ctx, CreateBookingRequest{
		VenueID: v.ID, UserID: 1, Date: "2025-11-16", StartTime: "09:30",
	})
	require.NoError(t, err)

	rows, err := env.svc.GetUserBookings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-11-16", rows[0].Date, "newest first")

	rows, err = env.svc.GetUserBookings(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEnqueueBooking(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	res, err := env.svc.EnqueueBooking(ctx, CreateBookingRequest{
		VenueID: 7, UserID: 42, Date: "2025-11-15", StartTime: "10:00", Duration: 2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.EntryID)

	n, err := env.rdb.XLen(ctx, "stream:bookings").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGetAvailability_BadDate(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.GetAvailability(context.Background(), 1, "not-a-date")
	assert.ErrorIs(t, err, ErrValidation)
}
