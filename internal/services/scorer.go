package services

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/corelord/corelord/internal/models"
)

// Guards against degenerate preference bounds. A zero-width wave band
// still scores its center as a perfect match, and a zero wind limit
// still divides cleanly.
const (
	minHalfSpan = 0.005
	minWindCap  = 0.1
)

// ScoreBounds are the effective scoring bounds for one break, after any
// per-break override has been applied on top of the global profile.
type ScoreBounds struct {
	MinWave   float64
	MaxWave   float64
	MinPeriod float64
	MaxWind   float64
}

// BoundsFromProfile extracts scoring bounds from a preference profile.
func BoundsFromProfile(p *models.PreferenceProfile) ScoreBounds {
	return ScoreBounds{
		MinWave:   p.MinWave,
		MaxWave:   p.MaxWave,
		MinPeriod: p.MinPeriod,
		MaxWind:   p.MaxWind,
	}
}

// ApplyBreakOverride layers a per-break preference over the profile
// bounds. Only fields the override sets are replaced.
func ApplyBreakOverride(bounds ScoreBounds, bp *models.BreakPreference) ScoreBounds {
	if bp == nil {
		return bounds
	}
	if bp.MinHeightM != nil {
		bounds.MinWave = *bp.MinHeightM
	}
	if bp.MaxHeightM != nil {
		bounds.MaxWave = *bp.MaxHeightM
	}
	if bp.MinPeriodS != nil {
		bounds.MinPeriod = *bp.MinPeriodS
	}
	if bp.MaxWindKt != nil {
		bounds.MaxWind = *bp.MaxWindKt
	}
	return bounds
}

// ScoreSample rates one forecast sample against the bounds. The score is
// the mean of the wave, period and wind sub-scores, each in [0, 1], and
// is rounded to two decimals. A sample field the feed left null scores
// its sub-score 0 but stays in the average.
func ScoreSample(sample models.ForecastSample, bounds ScoreBounds) float64 {
	wave := waveScore(sample.WaveHeightM, bounds.MinWave, bounds.MaxWave)
	period := periodScore(sample.SwellPeriodS, bounds.MinPeriod)
	wind := windScore(sample.WindSpeedKt, bounds.MaxWind)

	mean := (wave + period + wind) / 3
	return round2(mean)
}

// waveScore peaks at the center of the preferred band and falls off
// linearly to 0 at either edge. Outside the band it drops by 1 per meter
// of overshoot.
func waveScore(height *float64, minWave, maxWave float64) float64 {
	if height == nil {
		return 0
	}
	h := *height

	if h >= minWave && h <= maxWave {
		center := (minWave + maxWave) / 2
		halfSpan := (maxWave - minWave) / 2
		if halfSpan < minHalfSpan {
			halfSpan = minHalfSpan
		}
		offset := math.Abs(h-center) / halfSpan
		if offset > 1 {
			offset = 1
		}
		return 1 - offset
	}

	var over float64
	if h < minWave {
		over = minWave - h
	} else {
		over = h - maxWave
	}
	return math.Max(0, 1-over)
}

// periodScore ramps from 0 at the minimum period to 1 four seconds
// above it.
func periodScore(period *float64, minPeriod float64) float64 {
	if period == nil {
		return 0
	}
	score := (*period - minPeriod) / 4
	return clamp01(score)
}

// windScore stays in [0.6, 1] while the wind is within the limit,
// scaling down with wind speed, then loses 0.05 per knot over the limit.
func windScore(wind *float64, maxWind float64) float64 {
	if wind == nil {
		return 0
	}
	w := *wind

	capKt := math.Max(maxWind, minWindCap)
	if w <= maxWind {
		return math.Max(0.6, 1-(w/capKt)*0.4)
	}

	over := w - maxWind
	return math.Max(0, 0.6-over*0.05)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round2 rounds half away from zero to two decimals. decimal keeps the
// result stable across platforms where float printing would not be.
func round2(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return rounded
}
