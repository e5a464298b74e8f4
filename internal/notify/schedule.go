package notify

import "time"

// Business hours used for delayed notification delivery.
const (
	businessOpenHour  = 9
	businessCloseHour = 17
)

// NextBusinessTime returns the earliest instant at or after t that falls
// within business hours, Monday to Friday 09:00 to 17:00 in t's location.
// An instant already inside business hours is returned unchanged.
func NextBusinessTime(t time.Time) time.Time {
	for {
		switch t.Weekday() {
		case time.Saturday:
			t = openOn(t.AddDate(0, 0, 2))
			continue
		case time.Sunday:
			t = openOn(t.AddDate(0, 0, 1))
			continue
		}

		if t.Hour() < businessOpenHour {
			return openOn(t)
		}
		if t.Hour() >= businessCloseHour {
			t = openOn(t.AddDate(0, 0, 1))
			continue
		}
		return t
	}
}

func openOn(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), businessOpenHour, 0, 0, 0, t.Location())
}
