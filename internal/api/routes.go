package api

import (
	"github.com/gin-gonic/gin"

	"github.com/corelord/corelord/internal/api/handlers"
	"github.com/corelord/corelord/internal/middleware"
)

// Dependencies carries everything the route tree needs.
type Dependencies struct {
	Health      *handlers.HealthHandler
	Users       *handlers.UserHandler
	Preferences *handlers.PreferencesHandler
	Forecasts   *handlers.ForecastHandler
	Planner     *handlers.PlannerHandler
	Admin       *handlers.AdminHandler
	Auth        *middleware.AuthMiddleware
	AdminAuth   *middleware.AdminMiddleware
}

// SetupRoutes wires all endpoints onto the router. Forecast data is public,
// planner state requires a user token and operational endpoints require the
// admin API key.
func SetupRoutes(router *gin.Engine, deps *Dependencies) {
	router.GET("/health", deps.Health.HealthCheck)
	router.GET("/ready", deps.Health.ReadinessCheck)
	router.GET("/live", deps.Health.LivenessCheck)

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", deps.Users.RegisterUser)
			users.POST("/login", deps.Users.LoginUser)
			users.GET("/profile", deps.Auth.RequireAuth(), deps.Users.GetUserProfile)
			users.PUT("/profile", deps.Auth.RequireAuth(), deps.Users.UpdateUserProfile)
		}

		// Forecast endpoints are public but accept a token so request
		// spans carry the user when one is logged in.
		forecast := v1.Group("/forecast", deps.Auth.OptionalAuth())
		{
			forecast.GET("/breaks", deps.Forecasts.ListBreaks)
			forecast.GET("/regions", deps.Forecasts.ListRegions)
			forecast.GET("/:breakId", deps.Forecasts.GetForecast)
			forecast.GET("/:breakId/summary", deps.Forecasts.GetSummary)
		}

		planner := v1.Group("/planner", deps.Auth.RequireAuth())
		{
			planner.POST("/plan", deps.Planner.BuildPlan)
			planner.GET("/preferences", deps.Preferences.GetPreferences)
			planner.PUT("/preferences", deps.Preferences.UpdatePreferences)
			planner.GET("/availability", deps.Preferences.GetAvailability)
			planner.POST("/availability", deps.Preferences.ReplaceAvailability)
			planner.GET("/breaks/:breakId/preferences", deps.Preferences.GetBreakPreference)
			planner.PUT("/breaks/:breakId/preferences", deps.Preferences.UpdateBreakPreference)
			planner.DELETE("/breaks/:breakId/preferences", deps.Preferences.DeleteBreakPreference)
		}

		admin := v1.Group("/admin", deps.AdminAuth.RequireAdminAuth())
		{
			admin.GET("/cache/stats", deps.Admin.CacheStats)
			admin.POST("/cache/clear", deps.Admin.ClearCache)
			admin.GET("/refresher/status", deps.Admin.RefreshStatus)
			admin.POST("/alerts/run", deps.Admin.TriggerAlerts)
		}
	}
}
