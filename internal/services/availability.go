package services

import (
	"time"

	"github.com/corelord/corelord/internal/models"
)

// DefaultWindowHours is the session length assumed when a window does
// not carry its own duration.
const DefaultWindowHours = 2

// IsAvailable reports whether the local time t falls inside any of the
// user's weekly availability windows. An empty schedule means the user
// is always available. Windows do not wrap past midnight; a window whose
// duration would cross it is cut off at hour 24.
func IsAvailable(t time.Time, windows []models.AvailabilityWindow) bool {
	if len(windows) == 0 {
		return true
	}

	dow := int(t.Weekday())
	hour := t.Hour()

	for _, w := range windows {
		if matchesWindow(w, dow, hour) {
			return true
		}
	}
	return false
}

func matchesWindow(w models.AvailabilityWindow, dow, hour int) bool {
	if w.DayOfWeek != dow {
		return false
	}

	duration := w.DurationHours
	if duration <= 0 {
		duration = DefaultWindowHours
	}

	end := w.StartHour + duration
	if end > 24 {
		end = 24
	}

	return hour >= w.StartHour && hour < end
}

// MatchesTimeOfDay reports whether the local time t falls inside the
// requested part of the day. Unknown values behave as "any".
func MatchesTimeOfDay(t time.Time, tod models.TimeOfDay) bool {
	hour := t.Hour()
	switch tod {
	case models.TimeOfDayMorning:
		return hour >= 5 && hour < 12
	case models.TimeOfDayAfternoon:
		return hour >= 12 && hour < 17
	case models.TimeOfDayEvening:
		return hour >= 17 && hour < 21
	default:
		return true
	}
}
