package models

import (
	"time"
)

// Break represents a named surf location with region/country metadata
type Break struct {
	ID        int      `json:"id" db:"id"`
	Name      string   `json:"name" db:"name"`
	Region    string   `json:"region" db:"region"`
	Country   string   `json:"country" db:"country"`
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
}

// ForecastSample is one hourly observation for a break. Numeric fields are
// pointers because the upstream feed regularly omits readings.
type ForecastSample struct {
	Timestamp    int64    `json:"ts"`
	WaveHeightM  *float64 `json:"waveHeightM"`
	SwellPeriodS *float64 `json:"swellPeriodS"`
	SwellDir     *float64 `json:"swellDir,omitempty"`
	WindSpeedKt  *float64 `json:"windSpeedKt"`
	WindDir      *float64 `json:"windDir,omitempty"`
	TideM        *float64 `json:"tideM,omitempty"`
}

// Time returns the sample timestamp as a time.Time in UTC.
func (s ForecastSample) Time() time.Time {
	return time.Unix(s.Timestamp, 0).UTC()
}

// ForecastSeries is the ordered-by-time hourly forecast for one break.
type ForecastSeries struct {
	BreakID   int              `json:"breakId"`
	FetchedAt time.Time        `json:"fetchedAt"`
	Items     []ForecastSample `json:"items"`
}
