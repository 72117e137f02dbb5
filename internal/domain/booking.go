package domain

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID         int64         `json:"id"`
	VenueID    int64         `json:"venue_id" validate:"required"`
	UserID     int64         `json:"user_id" validate:"required"`
	Date       string        `json:"date" validate:"required"`       // YYYY-MM-DD
	StartTime  string        `json:"start_time" validate:"required"` // HH:MM
	Duration   int           `json:"duration" validate:"gte=1"`      // hours
	TotalPrice float64       `json:"total_price"`
	Status     BookingStatus `json:"status"`
	Notes      string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	CancelledAt *time.Time   `json:"cancelled_at,omitempty"`
}
