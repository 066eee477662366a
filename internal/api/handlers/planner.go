package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corelord/corelord/internal/middleware"
	"github.com/corelord/corelord/internal/models"
	"github.com/corelord/corelord/internal/telemetry"
)

// SessionPlanner builds a ranked session plan for a user.
type SessionPlanner interface {
	Plan(ctx context.Context, userID string, limit int) ([]models.ScoredResult, error)
}

// PlannerHandler serves plan building.
type PlannerHandler struct {
	planner      SessionPlanner
	tracer       *telemetry.PlannerTracer
	defaultLimit int
}

// PlanResponse is the body of POST /api/v1/planner/plan.
type PlanResponse struct {
	Results     []models.ScoredResult `json:"results"`
	Count       int                   `json:"count"`
	GeneratedAt time.Time             `json:"generated_at"`
}

func NewPlannerHandler(planner SessionPlanner, defaultLimit int) *PlannerHandler {
	if defaultLimit <= 0 {
		defaultLimit = 40
	}
	return &PlannerHandler{
		planner:      planner,
		tracer:       telemetry.NewPlannerTracer(),
		defaultLimit: defaultLimit,
	}
}

// BuildPlan handles POST /api/v1/planner/plan. The limit query parameter
// caps the number of ranked results.
func (h *PlannerHandler) BuildPlan(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	ctx, span := h.tracer.TracePlanBuild(c.Request.Context(), userID, limit)
	defer span.End()

	results, err := h.planner.Plan(ctx, userID, limit)
	if err != nil {
		middleware.RecordError(c, err, "plan build failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build plan"})
		return
	}
	if results == nil {
		results = []models.ScoredResult{}
	}

	h.tracer.RecordPlanMetrics(span, len(results))

	c.JSON(http.StatusOK, PlanResponse{
		Results:     results,
		Count:       len(results),
		GeneratedAt: time.Now(),
	})
}
