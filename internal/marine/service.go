package marine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/corelord/corelord/internal/config"
	"github.com/corelord/corelord/internal/models"
	"github.com/corelord/corelord/internal/telemetry"
)

// FeedClient abstracts the marine feed HTTP client so the service can be
// tested against a fake feed.
type FeedClient interface {
	HealthCheck(ctx context.Context) (*HealthResponse, error)
	ListBreaks(ctx context.Context) ([]models.Break, error)
	GetForecast(ctx context.Context, breakID int) (*models.ForecastSeries, error)
	Close() error
}

// Service provides high-level access to the marine feed. It maintains an
// in-memory break catalog refreshed from the feed.
type Service struct {
	client     FeedClient
	breaks     map[int]models.Break
	mu         sync.RWMutex
	lastUpdate time.Time
	logger     *logrus.Logger
	tracer     *telemetry.FeedTracer
}

// NewService creates a new marine service instance.
func NewService(cfg *config.MarineConfig, logger *logrus.Logger) *Service {
	return NewServiceWithClient(NewClient(cfg), logger)
}

// NewServiceWithClient creates a service around an existing feed client.
func NewServiceWithClient(client FeedClient, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		breaks: make(map[int]models.Break),
		logger: logger,
		tracer: telemetry.NewFeedTracer(),
	}
}

// Initialize loads the break catalog from the feed.
func (s *Service) Initialize(ctx context.Context) error {
	ctx, span := s.tracer.TraceCatalogRefresh(ctx)
	defer span.End()

	breaks, err := s.client.ListBreaks(ctx)
	if err != nil {
		s.tracer.RecordCatalogResult(span, 0, err)
		return fmt.Errorf("failed to fetch break catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.breaks = make(map[int]models.Break, len(breaks))
	for _, b := range breaks {
		s.breaks[b.ID] = b
	}

	s.lastUpdate = time.Now()
	s.tracer.RecordCatalogResult(span, len(s.breaks), nil)
	s.logger.Infof("Initialized marine service with %d breaks", len(s.breaks))

	return nil
}

// IsHealthy checks if the marine feed is reachable.
func (s *Service) IsHealthy(ctx context.Context) bool {
	_, err := s.client.HealthCheck(ctx)
	return err == nil
}

// GetBreak returns a break from the catalog.
func (s *Service) GetBreak(breakID int) (models.Break, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.breaks[breakID]
	return b, exists
}

// ListBreaks returns the catalog filtered by optional country and region,
// sorted by name. Filters are case-insensitive.
func (s *Service) ListBreaks(country, region string) []models.Break {
	s.mu.RLock()
	defer s.mu.RUnlock()

	breaks := make([]models.Break, 0, len(s.breaks))
	for _, b := range s.breaks {
		if country != "" && !strings.EqualFold(b.Country, country) {
			continue
		}
		if region != "" && !strings.EqualFold(b.Region, region) {
			continue
		}
		breaks = append(breaks, b)
	}

	sort.Slice(breaks, func(i, j int) bool {
		return breaks[i].Name < breaks[j].Name
	})

	return breaks
}

// Regions returns the distinct regions in the catalog, sorted.
func (s *Service) Regions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, b := range s.breaks {
		if b.Region != "" {
			seen[b.Region] = struct{}{}
		}
	}

	regions := make([]string, 0, len(seen))
	for r := range seen {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	return regions
}

// GetForecast fetches the forecast series for a catalog break. Unknown
// breaks fail with ErrBreakNotFound without hitting the feed.
func (s *Service) GetForecast(ctx context.Context, breakID int) (*models.ForecastSeries, error) {
	if _, exists := s.GetBreak(breakID); !exists {
		return nil, fmt.Errorf("%w: break %d", ErrBreakNotFound, breakID)
	}

	series, err := s.client.GetForecast(ctx, breakID)
	if err != nil {
		return nil, err
	}

	return series, nil
}

// LastUpdate reports when the break catalog was last refreshed.
func (s *Service) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Close releases the underlying feed client.
func (s *Service) Close() error {
	return s.client.Close()
}
