package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corelord/corelord/internal/marine"
	"github.com/corelord/corelord/internal/middleware"
	"github.com/corelord/corelord/internal/models"
	"github.com/corelord/corelord/internal/services"
)

// BreakCatalog lists known breaks and regions from the marine feed.
type BreakCatalog interface {
	ListBreaks(country, region string) []models.Break
	Regions() []string
}

// ForecastReader fetches a forecast series for one break.
type ForecastReader interface {
	GetForecast(ctx context.Context, breakID int) (*models.ForecastSeries, error)
}

// Summarizer builds a daily summary for one break.
type Summarizer interface {
	Summarize(ctx context.Context, breakID int) (*services.ForecastSummary, error)
}

// ForecastHandler serves the public break catalog and forecast endpoints.
type ForecastHandler struct {
	catalog   BreakCatalog
	forecasts ForecastReader
	summaries Summarizer
}

func NewForecastHandler(catalog BreakCatalog, forecasts ForecastReader, summaries Summarizer) *ForecastHandler {
	return &ForecastHandler{
		catalog:   catalog,
		forecasts: forecasts,
		summaries: summaries,
	}
}

// ListBreaks handles GET /api/v1/forecast/breaks. Optional country and
// region query parameters filter the catalog.
func (h *ForecastHandler) ListBreaks(c *gin.Context) {
	country := c.Query("country")
	region := c.Query("region")

	breaks := h.catalog.ListBreaks(country, region)
	if breaks == nil {
		breaks = []models.Break{}
	}

	c.JSON(http.StatusOK, gin.H{
		"breaks":    breaks,
		"count":     len(breaks),
		"timestamp": time.Now(),
	})
}

// ListRegions handles GET /api/v1/forecast/regions.
func (h *ForecastHandler) ListRegions(c *gin.Context) {
	regions := h.catalog.Regions()
	if regions == nil {
		regions = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// GetForecast handles GET /api/v1/forecast/:breakId.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	breakID, ok := breakIDParam(c)
	if !ok {
		return
	}
	annotateForecastSpan(c, breakID)

	series, err := h.forecasts.GetForecast(c.Request.Context(), breakID)
	if err != nil {
		writeFeedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": series})
}

// GetSummary handles GET /api/v1/forecast/:breakId/summary.
func (h *ForecastHandler) GetSummary(c *gin.Context) {
	breakID, ok := breakIDParam(c)
	if !ok {
		return
	}
	annotateForecastSpan(c, breakID)

	// Summarizing walks the whole series, so it gets its own span under
	// the request span.
	ctx, span := middleware.StartSpan(c, "forecast.summarize")
	summary, err := h.summaries.Summarize(ctx, breakID)
	span.End()
	if err != nil {
		writeFeedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// annotateForecastSpan tags the request span with the break and, when a
// token was presented on this public route, the requesting user.
func annotateForecastSpan(c *gin.Context, breakID int) {
	middleware.AddSpanAttribute(c, "break.id", breakID)
	if userID, ok := c.Get(middleware.ContextUserID); ok {
		middleware.AddSpanAttribute(c, "user.id", userID)
	}
}

// writeFeedError maps marine feed errors onto HTTP statuses. Unknown breaks
// are a client error; an unreachable or garbled feed is an upstream failure.
func writeFeedError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, marine.ErrBreakNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Break not found"})
	case errors.Is(err, marine.ErrFeedUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Marine feed unavailable"})
	case errors.Is(err, marine.ErrMalformedPayload):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Marine feed returned malformed data"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch forecast"})
	}
}
