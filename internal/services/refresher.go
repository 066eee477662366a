package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/corelord/corelord/internal/models"
)

// RefresherConfig holds configuration for the forecast refresher
type RefresherConfig struct {
	Interval  time.Duration
	MaxErrors int
}

// RegionCatalog lists regions and the breaks inside them.
type RegionCatalog interface {
	Regions() []string
	ListBreaks(country, region string) []models.Break
}

// ForecastRefresher keeps the forecast cache warm. It runs one worker
// per region that periodically re-fetches every break in that region
// into the cache.
type ForecastRefresher struct {
	catalog RegionCatalog
	fetcher ForecastFetcher
	cache   ForecastCache
	config  RefresherConfig
	logger  *logrus.Logger

	workers map[string]*RefreshWorker
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// RefreshWorker tracks the refresh loop state for one region.
type RefreshWorker struct {
	Region     string
	Interval   time.Duration
	LastUpdate time.Time
	IsRunning  bool
	ErrorCount int
	MaxErrors  int
}

// NewForecastRefresher creates a forecast refresher service.
func NewForecastRefresher(catalog RegionCatalog, fetcher ForecastFetcher, cache ForecastCache, cfg RefresherConfig, logger *logrus.Logger) *ForecastRefresher {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = 5
	}

	return &ForecastRefresher{
		catalog: catalog,
		fetcher: fetcher,
		cache:   cache,
		config:  cfg,
		logger:  logger,
		workers: make(map[string]*RefreshWorker),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start creates one refresh worker per known region.
func (r *ForecastRefresher) Start() error {
	r.logger.Info("Starting forecast refresher...")

	regions := r.catalog.Regions()
	if len(regions) == 0 {
		return fmt.Errorf("no regions in break catalog")
	}

	for _, region := range regions {
		r.createWorker(region)
	}

	r.logger.Infof("Started %d refresh workers", len(r.workers))
	return nil
}

// Stop gracefully stops all refresh workers.
func (r *ForecastRefresher) Stop() {
	r.logger.Info("Stopping forecast refresher...")
	r.cancel()
	r.wg.Wait()
	r.logger.Info("Forecast refresher stopped")
}

// WorkerStatus reports the state of the worker for a region.
func (r *ForecastRefresher) WorkerStatus(region string) (RefreshWorker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workers[region]
	if !ok {
		return RefreshWorker{}, false
	}
	return *w, true
}

func (r *ForecastRefresher) createWorker(region string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	worker := &RefreshWorker{
		Region:    region,
		Interval:  r.config.Interval,
		MaxErrors: r.config.MaxErrors,
		IsRunning: true,
	}
	r.workers[region] = worker

	r.wg.Add(1)
	go r.runWorker(worker)
}

func (r *ForecastRefresher) runWorker(worker *RefreshWorker) {
	defer r.wg.Done()

	ticker := time.NewTicker(worker.Interval)
	defer ticker.Stop()

	r.logger.Infof("Refresh worker for region %s started", worker.Region)

	// Warm the cache once up front so the first plan does not pay the
	// full fan-out cost.
	if err := r.refreshRegion(worker.Region); err != nil {
		r.logger.WithError(err).Warnf("Initial refresh for region %s failed", worker.Region)
	}

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Infof("Refresh worker for region %s stopping", worker.Region)
			return
		case <-ticker.C:
			if err := r.refreshRegion(worker.Region); err != nil {
				r.incrementError(worker)
				r.logger.WithError(err).Warnf("Error refreshing region %s (error count: %d)", worker.Region, worker.ErrorCount)

				if worker.ErrorCount >= worker.MaxErrors {
					r.logger.Errorf("Refresh worker for region %s exceeded max errors (%d), stopping", worker.Region, worker.MaxErrors)
					r.setRunning(worker, false)
					return
				}
			} else {
				r.resetError(worker)
				r.cache.LogStats()
			}
		}
	}
}

// refreshRegion re-fetches every break in the region into the cache. A
// single failed break does not fail the sweep; the sweep fails only when
// every break in it failed.
func (r *ForecastRefresher) refreshRegion(region string) error {
	breaks := r.catalog.ListBreaks("", region)
	if len(breaks) == 0 {
		return nil
	}

	var failed int
	for _, b := range breaks {
		series, err := r.fetcher.GetForecast(r.ctx, b.ID)
		if err != nil {
			failed++
			r.logger.WithError(err).WithField("break_id", b.ID).Debug("Refresh fetch failed")
			continue
		}
		r.cache.Set(r.ctx, series)
	}

	if failed == len(breaks) {
		return fmt.Errorf("all %d forecast fetches failed for region %s", failed, region)
	}
	return nil
}

func (r *ForecastRefresher) incrementError(worker *RefreshWorker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	worker.ErrorCount++
}

func (r *ForecastRefresher) resetError(worker *RefreshWorker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	worker.ErrorCount = 0
	worker.LastUpdate = time.Now()
}

func (r *ForecastRefresher) setRunning(worker *RefreshWorker, running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	worker.IsRunning = running
}
