package marine

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/corelord/corelord/internal/models"
)

var titleCaser = cases.Title(language.English)

// normalizeBreak maps one raw feed entry onto the canonical Break model.
// The feed mixes camelCase, PascalCase and snake_case between entries,
// so every field is resolved through its known aliases. Entries missing
// an id or a name are rejected.
func normalizeBreak(raw rawObject) (models.Break, error) {
	var b models.Break

	id, ok := pickInt(raw, "id", "Id", "ID", "break_id", "breakId")
	if !ok {
		return b, fmt.Errorf("%w: break entry missing id", ErrMalformedPayload)
	}

	name, ok := pickString(raw, "name", "Name", "break_name", "breakName")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return b, fmt.Errorf("%w: break %d missing name", ErrMalformedPayload, id)
	}

	region, _ := pickString(raw, "region", "Region")
	country, _ := pickString(raw, "country", "Country")

	b.ID = id
	b.Name = name
	b.Region = titleCaser.String(strings.TrimSpace(region))
	b.Country = titleCaser.String(strings.TrimSpace(country))

	if lat, ok := pickFloat(raw, "latitude", "Latitude", "lat"); ok {
		b.Latitude = &lat
	}
	if lng, ok := pickFloat(raw, "longitude", "Longitude", "lng", "lon"); ok {
		b.Longitude = &lng
	}

	return b, nil
}

// normalizeSample maps one raw forecast entry onto the canonical sample
// model. Entries without a timestamp are rejected; every other field is
// optional and stays nil when absent or null.
func normalizeSample(raw rawObject) (models.ForecastSample, error) {
	var s models.ForecastSample

	ts, ok := pickInt64(raw, "ts", "Ts", "timestamp", "Timestamp", "time")
	if !ok {
		return s, fmt.Errorf("%w: forecast entry missing timestamp", ErrMalformedPayload)
	}
	s.Timestamp = ts

	if v, ok := pickFloat(raw, "waveHeightM", "WaveHeightM", "wave_height_m", "waveHeight"); ok {
		s.WaveHeightM = &v
	}
	if v, ok := pickFloat(raw, "swellPeriodS", "SwellPeriodS", "swell_period_s", "swellPeriod"); ok {
		s.SwellPeriodS = &v
	}
	if v, ok := pickFloat(raw, "swellDir", "SwellDir", "swell_dir", "swellDirection"); ok {
		s.SwellDir = &v
	}
	if v, ok := pickFloat(raw, "windSpeedKt", "WindSpeedKt", "wind_speed_kt", "windSpeed"); ok {
		s.WindSpeedKt = &v
	}
	if v, ok := pickFloat(raw, "windDir", "WindDir", "wind_dir", "windDirection"); ok {
		s.WindDir = &v
	}
	if v, ok := pickFloat(raw, "tideM", "TideM", "tide_m", "tide"); ok {
		s.TideM = &v
	}

	return s, nil
}

// pick returns the first alias present in the raw object with a non-null
// value.
func pick(raw rawObject, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			continue
		}
		return v, true
	}
	return nil, false
}

func pickString(raw rawObject, keys ...string) (string, bool) {
	v, ok := pick(raw, keys...)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func pickFloat(raw rawObject, keys ...string) (float64, bool) {
	v, ok := pick(raw, keys...)
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		// Some feeds quote their numbers.
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, false
		}
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &f); err != nil {
			return 0, false
		}
	}
	return f, true
}

func pickInt(raw rawObject, keys ...string) (int, bool) {
	f, ok := pickFloat(raw, keys...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func pickInt64(raw rawObject, keys ...string) (int64, bool) {
	f, ok := pickFloat(raw, keys...)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
