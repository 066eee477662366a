package services

import (
	"context"
	"sort"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/corelord/corelord/internal/models"
)

// smaPeriod is the window for the wave height trend, six hourly samples.
const smaPeriod = 6

// DailySummary aggregates one local calendar day of forecast samples.
type DailySummary struct {
	Date        string  `json:"date"`
	Samples     int     `json:"samples"`
	MaxWaveM    float64 `json:"max_wave_m"`
	AvgWaveM    float64 `json:"avg_wave_m"`
	AvgPeriodS  float64 `json:"avg_period_s"`
	AvgWindKt   float64 `json:"avg_wind_kt"`
	BestScoreAt int64   `json:"best_score_at"`
}

// ForecastSummary condenses a break's forecast into daily aggregates and
// a smoothed wave height trend.
type ForecastSummary struct {
	BreakID       int            `json:"break_id"`
	Days          []DailySummary `json:"days"`
	WaveTrend     []float64      `json:"wave_trend"`
	TrendLabel    string         `json:"trend"`
	GeneratedAt   time.Time      `json:"generated_at"`
	SampleCount   int            `json:"sample_count"`
	ScoredAgainst ScoreBounds    `json:"-"`
}

// SummaryService shapes forecast series into chart-ready summaries.
type SummaryService struct {
	forecasts ForecastProvider
	logger    *logrus.Logger
	location  *time.Location
}

func NewSummaryService(forecasts ForecastProvider, logger *logrus.Logger, location *time.Location) *SummaryService {
	if location == nil {
		location = time.Local
	}
	return &SummaryService{
		forecasts: forecasts,
		logger:    logger,
		location:  location,
	}
}

// Summarize builds the daily aggregates and wave trend for a break.
func (s *SummaryService) Summarize(ctx context.Context, breakID int) (*ForecastSummary, error) {
	series, err := s.forecasts.GetForecast(ctx, breakID)
	if err != nil {
		return nil, err
	}

	summary := &ForecastSummary{
		BreakID:     breakID,
		GeneratedAt: time.Now(),
		SampleCount: len(series.Items),
		Days:        buildDailySummaries(series.Items, s.location),
	}

	waves := waveHeights(series.Items)
	summary.WaveTrend = smoothWaveTrend(waves)
	summary.TrendLabel = labelTrend(summary.WaveTrend)

	return summary, nil
}

func buildDailySummaries(items []models.ForecastSample, loc *time.Location) []DailySummary {
	type bucket struct {
		waves, periods, winds []float64
		samples               int
		bestScore             float64
		bestAt                int64
	}

	buckets := make(map[string]*bucket)
	open := ScoreBounds{MinWave: 0, MaxWave: 99, MinPeriod: 0, MaxWind: 99}

	for _, item := range items {
		date := item.Time().In(loc).Format("2006-01-02")
		b, ok := buckets[date]
		if !ok {
			b = &bucket{}
			buckets[date] = b
		}

		b.samples++
		if item.WaveHeightM != nil {
			b.waves = append(b.waves, *item.WaveHeightM)
		}
		if item.SwellPeriodS != nil {
			b.periods = append(b.periods, *item.SwellPeriodS)
		}
		if item.WindSpeedKt != nil {
			b.winds = append(b.winds, *item.WindSpeedKt)
		}

		// /summary has no user context, so "best hour" is rated with
		// wide-open bounds
		score := ScoreSample(item, open)
		if score > b.bestScore || b.bestAt == 0 {
			b.bestScore = score
			b.bestAt = item.Timestamp
		}
	}

	days := make([]DailySummary, 0, len(buckets))
	for date, b := range buckets {
		days = append(days, DailySummary{
			Date:        date,
			Samples:     b.samples,
			MaxWaveM:    maxOf(b.waves),
			AvgWaveM:    round2(avgOf(b.waves)),
			AvgPeriodS:  round2(avgOf(b.periods)),
			AvgWindKt:   round2(avgOf(b.winds)),
			BestScoreAt: b.bestAt,
		})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func waveHeights(items []models.ForecastSample) []float64 {
	waves := make([]float64, 0, len(items))
	for _, item := range items {
		if item.WaveHeightM != nil {
			waves = append(waves, *item.WaveHeightM)
		}
	}
	return waves
}

// smoothWaveTrend runs a simple moving average over the wave heights.
// Series shorter than the window come back empty.
func smoothWaveTrend(waves []float64) []float64 {
	if len(waves) < smaPeriod {
		return nil
	}

	sma := trend.NewSmaWithPeriod[float64](smaPeriod)
	return helper.ChanToSlice(sma.Compute(helper.SliceToChan(waves)))
}

func labelTrend(smoothed []float64) string {
	if len(smoothed) < 2 {
		return "steady"
	}

	first := smoothed[0]
	last := smoothed[len(smoothed)-1]
	switch {
	case last > first*1.05:
		return "building"
	case last < first*0.95:
		return "dropping"
	default:
		return "steady"
	}
}

func maxOf(vals []float64) float64 {
	var m float64
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}

func avgOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
