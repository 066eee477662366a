package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/corelord/corelord/internal/middleware"
	"github.com/corelord/corelord/internal/models"
)

// PreferenceStore is the repository surface the preferences endpoints need.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (*models.PreferenceProfile, error)
	UpsertPreferences(ctx context.Context, p *models.PreferenceProfile) error
	ListAvailability(ctx context.Context, userID string) ([]models.AvailabilityWindow, error)
	ReplaceAvailability(ctx context.Context, userID string, windows []models.AvailabilityWindow) error
	GetBreakPreference(ctx context.Context, userID string, breakID int) (*models.BreakPreference, error)
	UpsertBreakPreference(ctx context.Context, bp *models.BreakPreference) error
	DeleteBreakPreference(ctx context.Context, userID string, breakID int) error
}

// PreferencesHandler handles planning preferences, availability windows and
// per-break overrides.
type PreferencesHandler struct {
	store PreferenceStore
}

func NewPreferencesHandler(store PreferenceStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// GetPreferences handles GET /api/v1/planner/preferences. Users without a
// stored profile get the defaults.
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	prefs, err := h.store.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// UpdatePreferences handles PUT /api/v1/planner/preferences.
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var prefs models.PreferenceProfile
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := validatePreferences(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preferences", "details": err.Error()})
		return
	}

	prefs.UserID = userID
	if err := h.store.UpsertPreferences(c.Request.Context(), &prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// GetAvailability handles GET /api/v1/planner/availability.
func (h *PreferencesHandler) GetAvailability(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	windows, err := h.store.ListAvailability(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load availability"})
		return
	}
	if windows == nil {
		windows = []models.AvailabilityWindow{}
	}

	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

// ReplaceAvailability handles POST /api/v1/planner/availability. The request
// body replaces the entire stored set; an empty list clears it, meaning the
// planner treats the user as always available.
func (h *PreferencesHandler) ReplaceAvailability(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var body struct {
		Windows []models.AvailabilityWindow `json:"windows"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	for i, window := range body.Windows {
		if err := validateWindow(window); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid window at index %d", i), "details": err.Error()})
			return
		}
	}

	if err := h.store.ReplaceAvailability(c.Request.Context(), userID, body.Windows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"windows": body.Windows})
}

// GetBreakPreference handles GET /api/v1/planner/breaks/:breakId/preferences.
func (h *PreferencesHandler) GetBreakPreference(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	breakID, ok := breakIDParam(c)
	if !ok {
		return
	}

	pref, err := h.store.GetBreakPreference(c.Request.Context(), userID, breakID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load break preference"})
		return
	}
	if pref == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No preference stored for this break"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preference": pref})
}

// UpdateBreakPreference handles PUT /api/v1/planner/breaks/:breakId/preferences.
func (h *PreferencesHandler) UpdateBreakPreference(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	breakID, ok := breakIDParam(c)
	if !ok {
		return
	}

	var pref models.BreakPreference
	if err := c.ShouldBindJSON(&pref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pref.UserID = userID
	pref.BreakID = breakID
	if err := h.store.UpsertBreakPreference(c.Request.Context(), &pref); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save break preference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preference": pref})
}

// DeleteBreakPreference handles DELETE /api/v1/planner/breaks/:breakId/preferences.
func (h *PreferencesHandler) DeleteBreakPreference(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	breakID, ok := breakIDParam(c)
	if !ok {
		return
	}

	if err := h.store.DeleteBreakPreference(c.Request.Context(), userID, breakID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No preference stored for this break"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": breakID})
}

func validatePreferences(p *models.PreferenceProfile) error {
	switch p.TimeOfDay {
	case "", models.TimeOfDayAny, models.TimeOfDayMorning, models.TimeOfDayAfternoon, models.TimeOfDayEvening:
	default:
		return fmt.Errorf("unknown time of day %q", p.TimeOfDay)
	}
	if p.TimeOfDay == "" {
		p.TimeOfDay = models.TimeOfDayAny
	}
	if p.HorizonDays < 0 {
		return fmt.Errorf("horizon days must not be negative")
	}
	return nil
}

func validateWindow(w models.AvailabilityWindow) error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return fmt.Errorf("day of week must be 0-6, got %d", w.DayOfWeek)
	}
	if w.StartHour < 0 || w.StartHour > 23 {
		return fmt.Errorf("start hour must be 0-23, got %d", w.StartHour)
	}
	if w.DurationHours < 0 {
		return fmt.Errorf("duration must not be negative, got %d", w.DurationHours)
	}
	return nil
}

func breakIDParam(c *gin.Context) (int, bool) {
	breakID, err := strconv.Atoi(c.Param("breakId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid break ID"})
		return 0, false
	}
	return breakID, true
}
