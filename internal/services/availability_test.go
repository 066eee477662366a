package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/corelord/corelord/internal/models"
)

// localTime builds a wall-clock time on the given weekday.
func localTime(t *testing.T, weekday time.Weekday, hour int) time.Time {
	t.Helper()

	// 2026-08-30 is a Sunday
	base := time.Date(2026, 8, 30, hour, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(weekday))
}

func TestIsAvailable_EmptyScheduleAlwaysAvailable(t *testing.T) {
	assert.True(t, IsAvailable(localTime(t, time.Wednesday, 3), nil))
	assert.True(t, IsAvailable(localTime(t, time.Saturday, 23), []models.AvailabilityWindow{}))
}

func TestIsAvailable_MondayMorningWindow(t *testing.T) {
	windows := []models.AvailabilityWindow{
		{DayOfWeek: 1, StartHour: 6, DurationHours: 2},
	}

	tests := []struct {
		name     string
		weekday  time.Weekday
		hour     int
		expected bool
	}{
		{"start of window", time.Monday, 6, true},
		{"inside window", time.Monday, 7, true},
		{"end of window excluded", time.Monday, 8, false},
		{"before window", time.Monday, 5, false},
		{"right day wrong evening", time.Monday, 18, false},
		{"wrong day right hour", time.Tuesday, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAvailable(localTime(t, tt.weekday, tt.hour), windows))
		})
	}
}

func TestIsAvailable_DefaultDuration(t *testing.T) {
	// A window without a duration spans two hours
	windows := []models.AvailabilityWindow{
		{DayOfWeek: 6, StartHour: 8},
	}

	assert.True(t, IsAvailable(localTime(t, time.Saturday, 8), windows))
	assert.True(t, IsAvailable(localTime(t, time.Saturday, 9), windows))
	assert.False(t, IsAvailable(localTime(t, time.Saturday, 10), windows))
}

func TestIsAvailable_NoMidnightWrap(t *testing.T) {
	// A late window is cut off at midnight rather than spilling into the
	// next day
	windows := []models.AvailabilityWindow{
		{DayOfWeek: 5, StartHour: 22, DurationHours: 4},
	}

	assert.True(t, IsAvailable(localTime(t, time.Friday, 22), windows))
	assert.True(t, IsAvailable(localTime(t, time.Friday, 23), windows))
	assert.False(t, IsAvailable(localTime(t, time.Saturday, 0), windows))
	assert.False(t, IsAvailable(localTime(t, time.Saturday, 1), windows))
}

func TestIsAvailable_MultipleWindows(t *testing.T) {
	windows := []models.AvailabilityWindow{
		{DayOfWeek: 1, StartHour: 6, DurationHours: 2},
		{DayOfWeek: 3, StartHour: 17, DurationHours: 3},
	}

	assert.True(t, IsAvailable(localTime(t, time.Monday, 6), windows))
	assert.True(t, IsAvailable(localTime(t, time.Wednesday, 19), windows))
	assert.False(t, IsAvailable(localTime(t, time.Wednesday, 6), windows))
}

func TestMatchesTimeOfDay(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		tod      models.TimeOfDay
		expected bool
	}{
		{"any matches dawn", 4, models.TimeOfDayAny, true},
		{"morning starts at 5", 5, models.TimeOfDayMorning, true},
		{"morning excludes noon", 12, models.TimeOfDayMorning, false},
		{"afternoon at noon", 12, models.TimeOfDayAfternoon, true},
		{"afternoon excludes 17", 17, models.TimeOfDayAfternoon, false},
		{"evening at 17", 17, models.TimeOfDayEvening, true},
		{"evening excludes 21", 21, models.TimeOfDayEvening, false},
		{"unknown value matches everything", 3, models.TimeOfDay("brunch"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := time.Date(2026, 8, 31, tt.hour, 30, 0, 0, time.UTC)
			assert.Equal(t, tt.expected, MatchesTimeOfDay(ts, tt.tod))
		})
	}
}
