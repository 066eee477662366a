package models

import (
	"time"
)

// TimeOfDay restricts planning to a part of the day.
// Morning is [5,12), afternoon [12,17), evening [17,21) in local time.
type TimeOfDay string

const (
	TimeOfDayAny       TimeOfDay = "any"
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
)

// PreferenceProfile holds a user's global planning bounds.
// Bounds are independently optional; the scorer never validates them.
type PreferenceProfile struct {
	UserID      string    `json:"-" db:"user_id"`
	MinWave     float64   `json:"minWave" db:"min_wave"`
	MaxWave     float64   `json:"maxWave" db:"max_wave"`
	MinPeriod   float64   `json:"minPeriod" db:"min_period"`
	MaxWind     float64   `json:"maxWind" db:"max_wind"`
	Regions     []string  `json:"regions" db:"regions"`
	HorizonDays int       `json:"days" db:"horizon_days"`
	TimeOfDay   TimeOfDay `json:"timeOfDay" db:"time_of_day"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// DefaultPreferences mirrors the defaults the planner form applied to
// empty inputs: an effectively unbounded band and a five day horizon.
func DefaultPreferences() PreferenceProfile {
	return PreferenceProfile{
		MinWave:     0,
		MaxWave:     99,
		MinPeriod:   0,
		MaxWind:     99,
		HorizonDays: 5,
		TimeOfDay:   TimeOfDayAny,
	}
}

// AvailabilityWindow is a weekly-recurring block when the user can surf.
// DayOfWeek is 0=Sunday..6=Saturday, StartHour 0-23 local time.
// DurationHours defaults to 2 when absent or non-positive.
type AvailabilityWindow struct {
	UserID        string `json:"-" db:"user_id"`
	DayOfWeek     int    `json:"dow" db:"day_of_week"`
	StartHour     int    `json:"startHour" db:"start_hour"`
	DurationHours int    `json:"durationHours,omitempty" db:"duration_hours"`
}

// BreakPreference holds per-break bounds a user has tuned for one spot.
// Wave, period and wind bounds override the global profile when the planner
// evaluates that break; tide and direction fields are stored for display but
// do not enter scoring.
type BreakPreference struct {
	UserID           string    `json:"-" db:"user_id"`
	BreakID          int       `json:"breakId" db:"break_id"`
	MinHeightM       *float64  `json:"minHeight" db:"min_height_m"`
	MaxHeightM       *float64  `json:"maxHeight" db:"max_height_m"`
	MinPeriodS       *float64  `json:"minPeriod" db:"min_period_s"`
	MaxPeriodS       *float64  `json:"maxPeriod" db:"max_period_s"`
	MaxWindKt        *float64  `json:"maxWind" db:"max_wind_kt"`
	MinTideM         *float64  `json:"minTide" db:"min_tide_m"`
	MaxTideM         *float64  `json:"maxTide" db:"max_tide_m"`
	AllowedSwellDirs []string  `json:"swellDirs" db:"allowed_swell_dirs"`
	AllowedWindDirs  []string  `json:"windDirs" db:"allowed_wind_dirs"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// ScoredResult is one ranked surf opportunity. Results are recomputed on
// every planning request and never persisted.
type ScoredResult struct {
	Timestamp    int64    `json:"ts"`
	BreakID      int      `json:"breakId"`
	BreakName    string   `json:"breakName"`
	Region       string   `json:"region"`
	WaveHeightM  *float64 `json:"waveHeightM"`
	SwellPeriodS *float64 `json:"swellPeriodS"`
	WindSpeedKt  *float64 `json:"windSpeedKt"`
	Score        float64  `json:"score"`
}
