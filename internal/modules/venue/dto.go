package venue

import "venuebook/internal/domain"

type CreateVenueRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	City         string  `json:"city"`
	Capacity     int     `json:"capacity"`
	PricePerHour float64 `json:"price_per_hour" binding:"required"`
}

// PopularVenue is a ranking row hydrated with the venue snapshot.
type PopularVenue struct {
	domain.Venue
	BookingCount int `json:"booking_count"`
}
