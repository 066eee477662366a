package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Marine      MarineConfig    `mapstructure:"marine"`
	Planner     PlannerConfig   `mapstructure:"planner"`
	Refresher   RefresherConfig `mapstructure:"refresher"`
	Telegram    TelegramConfig  `mapstructure:"telegram"`
	Security    SecurityConfig  `mapstructure:"security"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MarineConfig points at the external marine forecast service.
type MarineConfig struct {
	ServiceURL string `mapstructure:"service_url"`
	Timeout    int    `mapstructure:"timeout"`
}

// PlannerConfig tunes the session planner.
type PlannerConfig struct {
	Timezone         string `mapstructure:"timezone"`
	DefaultLimit     int    `mapstructure:"default_limit"`
	FetchConcurrency int    `mapstructure:"fetch_concurrency"`
	ForecastCacheTTL string `mapstructure:"forecast_cache_ttl"`
}

// RefresherConfig tunes the background forecast refresher.
type RefresherConfig struct {
	Interval  string `mapstructure:"interval"`
	MaxErrors int    `mapstructure:"max_errors"`
}

type TelegramConfig struct {
	BotToken      string `mapstructure:"bot_token"`
	AlertInterval string `mapstructure:"alert_interval"`
}

type SecurityConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
	JWTExpiry  string `mapstructure:"jwt_expiry"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

func Load() (*Config, error) {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("security.jwt_secret", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind JWT_SECRET environment variable: %w", err)
	}
	if err := viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_BOT_TOKEN environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	environment := strings.ToLower(config.Environment)

	if environment != "development" && config.Security.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required in non-development environments")
	}

	if config.Security.JWTExpiry != "" {
		if _, err := time.ParseDuration(config.Security.JWTExpiry); err != nil {
			return nil, fmt.Errorf("invalid JWT expiry duration: %w", err)
		}
	}

	if config.Security.BcryptCost < bcrypt.MinCost || config.Security.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, config.Security.BcryptCost)
	}

	if config.Planner.Timezone != "" {
		if _, err := time.LoadLocation(config.Planner.Timezone); err != nil {
			return nil, fmt.Errorf("invalid planner timezone %q: %w", config.Planner.Timezone, err)
		}
	}

	config.Environment = environment

	return &config, nil
}

// PlannerLocation resolves the configured planner timezone. An empty value
// falls back to the server's local zone.
func (c *Config) PlannerLocation() *time.Location {
	if c.Planner.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Planner.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ForecastCacheTTL parses the configured cache TTL, defaulting to 30 minutes.
func (c *Config) ForecastCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Planner.ForecastCacheTTL)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// JWTExpiry parses the configured token lifetime, defaulting to 24 hours.
func (c *Config) JWTExpiry() time.Duration {
	d, err := time.ParseDuration(c.Security.JWTExpiry)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "corelord")
	viper.SetDefault("database.sslmode", "disable")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Marine forecast service
	viper.SetDefault("marine.service_url", "http://localhost:3001")
	viper.SetDefault("marine.timeout", 30)

	// Planner
	viper.SetDefault("planner.timezone", "")
	viper.SetDefault("planner.default_limit", 40)
	viper.SetDefault("planner.fetch_concurrency", 4)
	viper.SetDefault("planner.forecast_cache_ttl", "30m")

	// Refresher
	viper.SetDefault("refresher.interval", "1h")
	viper.SetDefault("refresher.max_errors", 5)

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.alert_interval", "6h")

	// Security
	viper.SetDefault("security.jwt_secret", "")
	viper.SetDefault("security.jwt_expiry", "24h")
	viper.SetDefault("security.bcrypt_cost", 12)

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", "")
	viper.SetDefault("telemetry.service_name", "corelord")
	viper.SetDefault("telemetry.service_version", "1.0.0")
	viper.SetDefault("telemetry.sample_ratio", 0.2)
}
