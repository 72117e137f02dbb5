package cache

import "fmt"

// Key shapes follow the original deployment: one lock and one status hash per
// slot, one schedule view per venue+date, one snapshot per venue, one global
// popularity ranking.
const popularityKey = "venues:popularity"

func lockKey(venueID int64, date, start string) string {
	return fmt.Sprintf("lock:slot:%d:%s:%s", venueID, date, start)
}

func slotKey(venueID int64, date, start string) string {
	return fmt.Sprintf("slot:%d:%s:%s", venueID, date, start)
}

func schedKey(venueID int64, date string) string {
	return fmt.Sprintf("sched:%d:%s", venueID, date)
}

func venueKey(venueID int64) string {
	return fmt.Sprintf("venue:%d", venueID)
}
