package domain

import "time"

type Venue struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" validate:"required"`
	Description  string    `json:"description,omitempty"`
	City         string    `json:"city,omitempty"`
	Capacity     int       `json:"capacity"`
	PricePerHour float64   `json:"price_per_hour" validate:"gte=0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
