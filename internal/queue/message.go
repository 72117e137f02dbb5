package queue

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrBadEntry marks a queue entry whose shape cannot be normalized into a
// ConfirmRequest. Such entries are skipped without acknowledgment so they
// remain visible for inspection.
var ErrBadEntry = errors.New("malformed queue entry")

// ConfirmRequest is the canonical form of a pending confirmation. All
// equivalent wire encodings are normalized into it at the queue boundary
// before any business logic runs.
type ConfirmRequest struct {
	VenueID   int64
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	UserID    int64
	Duration  int // hours
}

func decodeEntry(values map[string]interface{}) (ConfirmRequest, error) {
	venueID, err := fieldInt64(values, "venue_id", "venueId")
	if err != nil {
		return ConfirmRequest{}, err
	}
	userID, err := fieldInt64(values, "user_id", "userId")
	if err != nil {
		return ConfirmRequest{}, err
	}
	date := fieldString(values, "date")
	start := fieldString(values, "time", "start_time")
	if date == "" || start == "" {
		return ConfirmRequest{}, fmt.Errorf("%w: missing date or time", ErrBadEntry)
	}

	duration := 1
	if raw := fieldString(values, "duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 {
			return ConfirmRequest{}, fmt.Errorf("%w: bad duration %q", ErrBadEntry, raw)
		}
		duration = d
	}

	return ConfirmRequest{
		VenueID:   venueID,
		Date:      date,
		StartTime: start,
		UserID:    userID,
		Duration:  duration,
	}, nil
}

func fieldString(values map[string]interface{}, names ...string) string {
	for _, name := range names {
		if v, ok := values[name]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func fieldInt64(values map[string]interface{}, names ...string) (int64, error) {
	raw := fieldString(values, names...)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrBadEntry, names[0])
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s %q", ErrBadEntry, names[0], raw)
	}
	return n, nil
}
