package booking

import (
	"context"

	"venuebook/internal/cache"
	"venuebook/internal/domain"
	"venuebook/internal/queue"
)

// BookingRepository is the durable-store contract for booking records.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// VenueRepository is the durable-store contract for venue metadata.
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// SlotLocker hands out per-slot exclusivity tokens.
type SlotLocker interface {
	Acquire(ctx context.Context, venueID int64, date, start, owner string) (bool, error)
	Release(ctx context.Context, venueID int64, date, start, owner string) error
}

// AvailabilityCache reads and mutates the per-day schedule view.
type AvailabilityCache interface {
	AvailableSlots(ctx context.Context, venueID int64, date string) ([]string, error)
	AddSlot(ctx context.Context, venueID int64, date, start string) error
}

// SlotConfirmer runs the atomic locked-to-booked transition.
type SlotConfirmer interface {
	Confirm(ctx context.Context, venueID int64, date, start, owner string) error
}

// VenueCache holds venue snapshots and the popularity ranking.
type VenueCache interface {
	Get(ctx context.Context, venueID int64) (*domain.Venue, error)
	Set(ctx context.Context, v *domain.Venue) error
	IncrementPopularity(ctx context.Context, venueID int64) error
}

// ConfirmEnqueuer appends confirmation requests for asynchronous processing.
type ConfirmEnqueuer interface {
	Enqueue(ctx context.Context, req queue.ConfirmRequest) (string, error)
}

// Compile-time wiring checks against the cache package implementations.
var (
	_ SlotLocker        = (*cache.LockManager)(nil)
	_ AvailabilityCache = (*cache.ScheduleCache)(nil)
	_ SlotConfirmer     = (*cache.Confirmer)(nil)
	_ VenueCache        = (*cache.VenueCache)(nil)
)
