package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/corelord/corelord/internal/models"
)

// ForecastCache is the cache surface the provider needs.
type ForecastCache interface {
	Get(ctx context.Context, breakID int) (*models.ForecastSeries, bool)
	Set(ctx context.Context, series *models.ForecastSeries)
	LogStats()
}

// ForecastFetcher fetches a forecast series from the marine feed.
type ForecastFetcher interface {
	GetForecast(ctx context.Context, breakID int) (*models.ForecastSeries, error)
}

// CachedForecastProvider answers forecast lookups from Redis and falls
// back to the marine feed on a miss, writing the result back.
type CachedForecastProvider struct {
	cache   ForecastCache
	fetcher ForecastFetcher
	logger  *logrus.Logger
}

func NewCachedForecastProvider(cache ForecastCache, fetcher ForecastFetcher, logger *logrus.Logger) *CachedForecastProvider {
	return &CachedForecastProvider{
		cache:   cache,
		fetcher: fetcher,
		logger:  logger,
	}
}

func (p *CachedForecastProvider) GetForecast(ctx context.Context, breakID int) (*models.ForecastSeries, error) {
	if series, ok := p.cache.Get(ctx, breakID); ok {
		return series, nil
	}

	series, err := p.fetcher.GetForecast(ctx, breakID)
	if err != nil {
		return nil, err
	}

	p.cache.Set(ctx, series)
	return series, nil
}
