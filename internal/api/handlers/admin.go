package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corelord/corelord/internal/cache"
	"github.com/corelord/corelord/internal/services"
)

// ForecastCacheAdmin exposes the cache operations the admin endpoints need.
type ForecastCacheAdmin interface {
	GetStats() cache.ForecastCacheStats
	Clear(ctx context.Context) error
	CachedBreakIDs(ctx context.Context) ([]int, error)
}

// RefresherAdmin reports background refresh worker state.
type RefresherAdmin interface {
	WorkerStatus(region string) (services.RefreshWorker, bool)
}

// AlertAdmin triggers a notification sweep on demand.
type AlertAdmin interface {
	Enabled() bool
	NotifySessionAlerts(ctx context.Context) error
}

// AdminHandler serves the operational endpoints behind the admin API key.
type AdminHandler struct {
	cache     ForecastCacheAdmin
	refresher RefresherAdmin
	regions   BreakCatalog
	alerts    AlertAdmin
}

func NewAdminHandler(cacheAdmin ForecastCacheAdmin, refresher RefresherAdmin, regions BreakCatalog, alerts AlertAdmin) *AdminHandler {
	return &AdminHandler{
		cache:     cacheAdmin,
		refresher: refresher,
		regions:   regions,
		alerts:    alerts,
	}
}

// CacheStats handles GET /api/v1/admin/cache/stats.
func (h *AdminHandler) CacheStats(c *gin.Context) {
	stats := h.cache.GetStats()

	breakIDs, err := h.cache.CachedBreakIDs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to inspect cache", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":         stats,
		"cached_breaks": len(breakIDs),
		"timestamp":     time.Now(),
	})
}

// ClearCache handles POST /api/v1/admin/cache/clear.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	if err := h.cache.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cache", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// RefreshStatus handles GET /api/v1/admin/refresher/status. It reports one
// entry per known region.
func (h *AdminHandler) RefreshStatus(c *gin.Context) {
	type workerState struct {
		Region     string    `json:"region"`
		Running    bool      `json:"running"`
		LastRun    time.Time `json:"last_run"`
		ErrorCount int       `json:"error_count"`
	}

	states := []workerState{}
	for _, region := range h.regions.Regions() {
		worker, ok := h.refresher.WorkerStatus(region)
		if !ok {
			states = append(states, workerState{Region: region})
			continue
		}
		states = append(states, workerState{
			Region:     region,
			Running:    worker.IsRunning,
			LastRun:    worker.LastUpdate,
			ErrorCount: worker.ErrorCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"workers": states})
}

// TriggerAlerts handles POST /api/v1/admin/alerts/run.
func (h *AdminHandler) TriggerAlerts(c *gin.Context) {
	if h.alerts == nil || !h.alerts.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Telegram alerts not configured"})
		return
	}

	if err := h.alerts.NotifySessionAlerts(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Alert sweep failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
