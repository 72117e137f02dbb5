package booking

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrSlotContended    = errors.New("slot is being processed by another request")
	ErrSlotUnavailable  = errors.New("slot not available")
	ErrAlreadyBooked    = errors.New("slot already booked")
	ErrLockNotOwner     = errors.New("slot lock held by another owner")
	ErrVenueNotFound    = errors.New("venue not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrStoreUnavailable wraps transient cache or durable-store failures so
	// handlers can answer 503 without inspecting driver errors.
	ErrStoreUnavailable = errors.New("store unavailable")
)
