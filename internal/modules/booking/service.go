package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"strconv"
	"time"

	"venuebook/internal/cache"
	"venuebook/internal/domain"
	"venuebook/internal/queue"
	"venuebook/internal/repository"

	"gorm.io/gorm"
)

// Service orchestrates one booking attempt: lock, availability check, venue
// resolution, durable write, atomic confirm, popularity bump, lock release.
// Correctness comes from the cache store's atomic primitives, so the service
// itself keeps no mutable state and is safe for concurrent use.
type Service struct {
	bookings BookingRepository
	venues   VenueRepository
	locks    SlotLocker
	schedule AvailabilityCache
	confirm  SlotConfirmer
	cache    VenueCache
	enqueue  ConfirmEnqueuer
}

func NewService(
	bookings BookingRepository,
	venues VenueRepository,
	locks SlotLocker,
	schedule AvailabilityCache,
	confirm SlotConfirmer,
	venueCache VenueCache,
	enqueue ConfirmEnqueuer,
) *Service {
	return &Service{
		bookings: bookings,
		venues:   venues,
		locks:    locks,
		schedule: schedule,
		confirm:  confirm,
		cache:    venueCache,
		enqueue:  enqueue,
	}
}

// CreateBooking books one slot end to end. Exactly one of any set of
// concurrent attempts on the same slot can succeed; the rest see
// ErrSlotContended or ErrSlotUnavailable.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingResult, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	owner := strconv.FormatInt(req.UserID, 10)

	locked, err := s.locks.Acquire(ctx, req.VenueID, req.Date, req.StartTime, owner)
	if err != nil {
		return nil, storeErr(err)
	}
	if !locked {
		return nil, ErrSlotContended
	}
	// Runs on every exit path. Confirm consumes the lock itself, and release
	// is owner-conditional, so this never tramples a re-acquired lock.
	defer func() {
		// Release must run even when the request context was cancelled; the
		// TTL remains the safety net if it still fails.
		rctx := context.WithoutCancel(ctx)
		if rerr := s.locks.Release(rctx, req.VenueID, req.Date, req.StartTime, owner); rerr != nil {
			log.Printf("release lock venue=%d %s %s: %v", req.VenueID, req.Date, req.StartTime, rerr)
		}
	}()

	slots, err := s.schedule.AvailableSlots(ctx, req.VenueID, req.Date)
	if err != nil {
		return nil, storeErr(err)
	}
	if !slices.Contains(slots, req.StartTime) {
		return nil, ErrSlotUnavailable
	}

	venue, err := s.resolveVenue(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}

	total := venue.PricePerHour * float64(req.Duration)
	total = math.Round(total*100) / 100

	b := &domain.Booking{
		VenueID:    req.VenueID,
		UserID:     req.UserID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		Duration:   req.Duration,
		TotalPrice: total,
		Status:     domain.BookingConfirmed,
		Notes:      req.Notes,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicateBooking) {
			return nil, ErrSlotUnavailable
		}
		return nil, storeErr(err)
	}

	if err := s.confirm.Confirm(ctx, req.VenueID, req.Date, req.StartTime, owner); err != nil {
		switch {
		case errors.Is(err, cache.ErrAlreadyBooked):
			return nil, ErrAlreadyBooked
		case errors.Is(err, cache.ErrLockNotOwner):
			return nil, ErrLockNotOwner
		}
		return nil, storeErr(err)
	}

	if err := s.cache.IncrementPopularity(ctx, req.VenueID); err != nil {
		log.Printf("increment popularity venue=%d: %v", req.VenueID, err)
	}

	return &BookingResult{BookingID: b.ID, TotalPrice: total}, nil
}

// EnqueueBooking appends the request to the confirmation queue instead of
// booking synchronously. A worker performs the same flow later.
func (s *Service) EnqueueBooking(ctx context.Context, req CreateBookingRequest) (*EnqueueResult, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	id, err := s.enqueue.Enqueue(ctx, queue.ConfirmRequest{
		VenueID:   req.VenueID,
		Date:      req.Date,
		StartTime: req.StartTime,
		UserID:    req.UserID,
		Duration:  req.Duration,
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &EnqueueResult{EntryID: id}, nil
}

// CancelBooking marks the booking cancelled and returns its slot to
// availability.
func (s *Service) CancelBooking(ctx context.Context, bookingID int64) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		return storeErr(err)
	}
	if b.Status == domain.BookingCancelled {
		return ErrAlreadyCancelled
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingCancelled); err != nil {
		return storeErr(err)
	}

	if err := s.schedule.AddSlot(ctx, b.VenueID, b.Date, b.StartTime); err != nil {
		return storeErr(err)
	}
	return nil
}

// GetAvailability lists the free times for a venue and date.
func (s *Service) GetAvailability(ctx context.Context, venueID int64, date string) ([]string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrValidation
	}

	slots, err := s.schedule.AvailableSlots(ctx, venueID, date)
	if err != nil {
		return nil, storeErr(err)
	}
	return slots, nil
}

// GetUserBookings lists a user's bookings, newest first.
func (s *Service) GetUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := s.bookings.GetByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return rows, nil
}

func (s *Service) resolveVenue(ctx context.Context, venueID int64) (*domain.Venue, error) {
	venue, err := s.cache.Get(ctx, venueID)
	if err != nil {
		return nil, storeErr(err)
	}
	if venue != nil {
		return venue, nil
	}

	venue, err = s.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, storeErr(err)
	}

	if err := s.cache.Set(ctx, venue); err != nil {
		log.Printf("cache venue %d: %v", venueID, err)
	}
	return venue, nil
}

func validateRequest(req *CreateBookingRequest) error {
	if req.VenueID <= 0 || req.UserID <= 0 {
		return ErrValidation
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return ErrValidation
	}
	if _, err := time.Parse("15:04", req.StartTime); err != nil {
		return ErrValidation
	}
	if req.Duration < 0 {
		return ErrValidation
	}
	if req.Duration == 0 {
		req.Duration = 1
	}
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
