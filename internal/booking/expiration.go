package booking

import "time"

// Expiration tiers. A pending booking goes stale at a deadline derived from
// how far in the future its due time was at creation (or reopen) time.
const (
	shortNoticeWindow = 90 * time.Minute
	sameDayWindow     = 24 * time.Hour
	midRangeWindow    = 72 * time.Hour

	shortNoticeGrace = 90 * time.Minute
	sameDayGrace     = 16 * time.Hour
	longRangeLead    = 48 * time.Hour
)

// WillExpireAt computes the expiration deadline for a booking created (or
// reopened) at createdAt with the given due time. Pure and deterministic.
//
// Tiers, evaluated in order on diff = due - createdAt:
//
//	diff <= 90min        -> due
//	90min < diff <= 24h  -> createdAt + 90min
//	24h < diff <= 72h    -> createdAt + 16h
//	diff > 72h           -> due - 48h
func WillExpireAt(due, createdAt time.Time) time.Time {
	diff := due.Sub(createdAt)

	switch {
	case diff <= shortNoticeWindow:
		return due
	case diff <= sameDayWindow:
		return createdAt.Add(shortNoticeGrace)
	case diff <= midRangeWindow:
		return createdAt.Add(sameDayGrace)
	default:
		return due.Add(-longRangeLead)
	}
}
