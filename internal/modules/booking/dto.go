package booking

type CreateBookingRequest struct {
	VenueID   int64  `json:"venue_id" binding:"required"`
	UserID    int64  `json:"-"`
	Date      string `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime string `json:"start_time" binding:"required"` // HH:MM
	Duration  int    `json:"duration"`                      // hours, defaults to 1
	Notes     string `json:"notes"`
}

type BookingResult struct {
	BookingID  int64   `json:"booking_id"`
	TotalPrice float64 `json:"total_price"`
}

type EnqueueResult struct {
	EntryID string `json:"entry_id"`
}
