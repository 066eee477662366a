package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/corelord/corelord/internal/models"
	"github.com/corelord/corelord/internal/telemetry"
)

// DefaultHorizonDays bounds the plan when the profile does not set one.
const DefaultHorizonDays = 5

// BreakCatalog supplies the known surf breaks, optionally filtered.
type BreakCatalog interface {
	ListBreaks(country, region string) []models.Break
}

// ForecastProvider supplies the forecast series for one break.
type ForecastProvider interface {
	GetForecast(ctx context.Context, breakID int) (*models.ForecastSeries, error)
}

// PlannerStore loads a user's stored planner settings.
type PlannerStore interface {
	GetPreferences(ctx context.Context, userID string) (*models.PreferenceProfile, error)
	ListAvailability(ctx context.Context, userID string) ([]models.AvailabilityWindow, error)
	ListBreakPreferences(ctx context.Context, userID string) (map[int]models.BreakPreference, error)
}

// PlannerService ranks upcoming forecast hours across all breaks a user
// cares about.
type PlannerService struct {
	catalog     BreakCatalog
	forecasts   ForecastProvider
	store       PlannerStore
	logger      *logrus.Logger
	location    *time.Location
	concurrency int
	tracer      *telemetry.PlannerTracer
}

// NewPlannerService creates a planner service.
func NewPlannerService(catalog BreakCatalog, forecasts ForecastProvider, store PlannerStore, logger *logrus.Logger, location *time.Location, concurrency int) *PlannerService {
	if location == nil {
		location = time.Local
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &PlannerService{
		catalog:     catalog,
		forecasts:   forecasts,
		store:       store,
		logger:      logger,
		location:    location,
		concurrency: concurrency,
		tracer:      telemetry.NewPlannerTracer(),
	}
}

// Plan loads the user's settings, fetches forecasts for every candidate
// break and returns the ranked sessions. A non-positive limit returns
// the full ranking.
func (s *PlannerService) Plan(ctx context.Context, userID string, limit int) ([]models.ScoredResult, error) {
	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	windows, err := s.store.ListAvailability(ctx, userID)
	if err != nil {
		return nil, err
	}

	breakPrefs, err := s.store.ListBreakPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	breaks := s.catalog.ListBreaks("", "")
	forecasts := s.fetchForecasts(ctx, breaks)

	results := Rank(breaks, forecasts, prefs, windows, breakPrefs, time.Now(), s.location)

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// fetchForecasts fans out across breaks with a bounded worker pool. A
// break whose fetch fails is logged and left out; the plan is built from
// whatever arrived.
func (s *PlannerService) fetchForecasts(ctx context.Context, breaks []models.Break) map[int]*models.ForecastSeries {
	forecasts := make(map[int]*models.ForecastSeries, len(breaks))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, s.concurrency)
	)

	for _, b := range breaks {
		wg.Add(1)
		go func(b models.Break) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			fetchCtx, span := s.tracer.TraceForecastFetch(ctx, b.ID)
			defer span.End()

			series, err := s.forecasts.GetForecast(fetchCtx, b.ID)
			if err != nil {
				s.tracer.RecordFetchResult(span, 0, err)
				s.logger.WithError(err).WithFields(logrus.Fields{
					"break_id":   b.ID,
					"break_name": b.Name,
				}).Warn("Failed to fetch forecast, skipping break")
				return
			}
			s.tracer.RecordFetchResult(span, len(series.Items), nil)

			mu.Lock()
			forecasts[b.ID] = series
			mu.Unlock()
		}(b)
	}

	wg.Wait()
	return forecasts
}

// Rank scores every forecast hour that passes the user's filters and
// orders the result by score descending, then timestamp ascending, then
// break id so equal sessions always come back in the same order.
func Rank(
	breaks []models.Break,
	forecasts map[int]*models.ForecastSeries,
	prefs *models.PreferenceProfile,
	windows []models.AvailabilityWindow,
	breakPrefs map[int]models.BreakPreference,
	now time.Time,
	loc *time.Location,
) []models.ScoredResult {
	if loc == nil {
		loc = time.Local
	}

	horizon := prefs.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}
	cutoff := now.Add(time.Duration(horizon) * 24 * time.Hour)

	profileBounds := BoundsFromProfile(prefs)

	results := make([]models.ScoredResult, 0)
	for _, b := range breaks {
		if !regionAllowed(b.Region, prefs.Regions) {
			continue
		}

		series, ok := forecasts[b.ID]
		if !ok || series == nil {
			continue
		}

		bounds := profileBounds
		if bp, ok := breakPrefs[b.ID]; ok {
			bounds = ApplyBreakOverride(bounds, &bp)
		}

		for _, sample := range series.Items {
			t := sample.Time()
			if t.Before(now) || t.After(cutoff) {
				continue
			}

			local := t.In(loc)
			if !IsAvailable(local, windows) {
				continue
			}
			if !MatchesTimeOfDay(local, prefs.TimeOfDay) {
				continue
			}

			results = append(results, models.ScoredResult{
				Timestamp:    sample.Timestamp,
				BreakID:      b.ID,
				BreakName:    b.Name,
				Region:       b.Region,
				WaveHeightM:  sample.WaveHeightM,
				SwellPeriodS: sample.SwellPeriodS,
				WindSpeedKt:  sample.WindSpeedKt,
				Score:        ScoreSample(sample, bounds),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Timestamp != results[j].Timestamp {
			return results[i].Timestamp < results[j].Timestamp
		}
		return results[i].BreakID < results[j].BreakID
	})

	return results
}

func regionAllowed(region string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if strings.EqualFold(r, region) {
			return true
		}
	}
	return false
}
