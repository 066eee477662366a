package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

// HealthChecker is any dependency that can report its own health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FeedChecker reports whether the marine feed is reachable.
type FeedChecker interface {
	IsHealthy(ctx context.Context) bool
	LastUpdate() time.Time
}

// HealthHandler serves the health, readiness and liveness probes.
type HealthHandler struct {
	db      HealthChecker
	redis   HealthChecker
	marine  FeedChecker
	version string
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	System    SystemInfo        `json:"system"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
}

// SystemInfo carries host resource usage for the health endpoint.
type SystemInfo struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	CPUPercent        float64 `json:"cpu_percent"`
}

func NewHealthHandler(db, redis HealthChecker, marine FeedChecker, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		marine:  marine,
		version: version,
	}
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	services := make(map[string]string)

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			services["database"] = "unhealthy: " + err.Error()
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "unhealthy: not configured"
	}

	if h.redis != nil {
		if err := h.redis.HealthCheck(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "unhealthy: not configured"
	}

	if h.marine != nil {
		if h.marine.IsHealthy(ctx) {
			services["marine_feed"] = "healthy"
		} else {
			services["marine_feed"] = "unhealthy: feed unreachable"
		}
	} else {
		services["marine_feed"] = "unhealthy: not configured"
	}

	overallStatus := "healthy"
	for _, status := range services {
		if status != "healthy" {
			overallStatus = "unhealthy"
			break
		}
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Services:  services,
		System:    collectSystemInfo(),
		Version:   h.version,
		Uptime:    time.Since(startTime).String(),
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

// ReadinessCheck handles GET /ready. The service is ready only when the
// database and the break catalog are both usable.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx := c.Request.Context()
	services := make(map[string]string)
	ready := true

	if h.db == nil {
		services["database"] = "not ready"
		ready = false
	} else if err := h.db.HealthCheck(ctx); err != nil {
		services["database"] = "not ready"
		ready = false
	} else {
		services["database"] = "ready"
	}

	if h.marine == nil || h.marine.LastUpdate().IsZero() {
		services["marine_feed"] = "not ready"
		ready = false
	} else {
		services["marine_feed"] = "ready"
	}

	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, gin.H{"ready": ready, "services": services})
}

// LivenessCheck handles GET /live.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func collectSystemInfo() SystemInfo {
	info := SystemInfo{}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryUsedPercent = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		info.CPUPercent = percents[0]
	}
	return info
}
