package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithDefaults(t *testing.T) {
	// Clear any existing environment variables that might interfere
	os.Clearenv()

	config, err := Load()
	require.NoError(t, err)
	require.NotNil(t, config)

	// Test default values
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, config.Server.AllowedOrigins)
	assert.Equal(t, "localhost", config.Database.Host)
	assert.Equal(t, 5432, config.Database.Port)
	assert.Equal(t, "postgres", config.Database.User)
	assert.Equal(t, "corelord", config.Database.DBName)
	assert.Equal(t, "disable", config.Database.SSLMode)
	assert.Equal(t, "localhost", config.Redis.Host)
	assert.Equal(t, 6379, config.Redis.Port)
	assert.Equal(t, 0, config.Redis.DB)
	assert.Equal(t, "http://localhost:3001", config.Marine.ServiceURL)
	assert.Equal(t, 30, config.Marine.Timeout)
	assert.Equal(t, 40, config.Planner.DefaultLimit)
	assert.Equal(t, 4, config.Planner.FetchConcurrency)
	assert.Equal(t, "1h", config.Refresher.Interval)
	assert.Equal(t, 5, config.Refresher.MaxErrors)
	assert.Equal(t, "", config.Telegram.BotToken)
	assert.Equal(t, 12, config.Security.BcryptCost)
	assert.False(t, config.Telemetry.Enabled)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DATABASE_HOST", "prod-db.example.com")
	t.Setenv("DATABASE_DBNAME", "corelord_prod")
	t.Setenv("REDIS_HOST", "prod-redis.example.com")
	t.Setenv("MARINE_SERVICE_URL", "http://marine.example.com:3001")
	t.Setenv("PLANNER_DEFAULT_LIMIT", "25")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "prod_bot_token")

	config, err := Load()
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, "error", config.LogLevel)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "prod-db.example.com", config.Database.Host)
	assert.Equal(t, "corelord_prod", config.Database.DBName)
	assert.Equal(t, "prod-redis.example.com", config.Redis.Host)
	assert.Equal(t, "http://marine.example.com:3001", config.Marine.ServiceURL)
	assert.Equal(t, 25, config.Planner.DefaultLimit)
	assert.Equal(t, "prod-secret", config.Security.JWTSecret)
	assert.Equal(t, "prod_bot_token", config.Telegram.BotToken)
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	os.Clearenv()
	t.Setenv("ENVIRONMENT", "production")

	config, err := Load()
	require.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	os.Clearenv()
	t.Setenv("PLANNER_TIMEZONE", "Not/AZone")

	config, err := Load()
	require.Error(t, err)
	assert.Nil(t, config)
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	t.Setenv("SECURITY_BCRYPT_COST", "99")

	config, err := Load()
	require.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "bcrypt cost")
}

func TestPlannerLocation(t *testing.T) {
	config := &Config{Planner: PlannerConfig{Timezone: "Pacific/Auckland"}}
	loc := config.PlannerLocation()
	require.NotNil(t, loc)
	assert.Equal(t, "Pacific/Auckland", loc.String())

	config = &Config{}
	assert.Equal(t, time.Local, config.PlannerLocation())
}

func TestForecastCacheTTL(t *testing.T) {
	config := &Config{Planner: PlannerConfig{ForecastCacheTTL: "15m"}}
	assert.Equal(t, 15*time.Minute, config.ForecastCacheTTL())

	config = &Config{Planner: PlannerConfig{ForecastCacheTTL: "bogus"}}
	assert.Equal(t, 30*time.Minute, config.ForecastCacheTTL())
}

func TestJWTExpiry(t *testing.T) {
	config := &Config{Security: SecurityConfig{JWTExpiry: "12h"}}
	assert.Equal(t, 12*time.Hour, config.JWTExpiry())

	config = &Config{}
	assert.Equal(t, 24*time.Hour, config.JWTExpiry())
}
