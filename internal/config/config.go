package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
	}

	Location struct {
		Latitude  float64
		Longitude float64
	}

	Weather struct {
		APIKey string
	}

	Pushover struct {
		Token string
		User  string
	}

	Forecast struct {
		NightStartHour int
		NightEndHour   int
		IllumThreshold float64
		VisThreshold   float64
		CoverThreshold float64
	}

	Scheduler struct {
		CronSchedule string
	}

	CircuitBreaker struct {
		Timeout time.Duration
	}

	Retry struct {
		MaxRetries int
		Delay      time.Duration
		Multiplier float64
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// HTTP server configuration (daemon mode)
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "10s"))

	// Home location
	cfg.Location.Latitude = parseFloat(getEnv("HOME_LAT", "0"))
	cfg.Location.Longitude = parseFloat(getEnv("HOME_LON", "0"))

	// Provider credentials
	cfg.Weather.APIKey = getEnv("WEATHER_API_KEY", "")
	cfg.Pushover.Token = getEnv("PUSHOVER_TOKEN", "")
	cfg.Pushover.User = getEnv("PUSHOVER_USER", "")

	// Forecast window and thresholds. The default window [6,13) UTC covers
	// late evening through overnight Pacific time.
	cfg.Forecast.NightStartHour = parseInt(getEnv("NIGHT_START_HOUR", "6"))
	cfg.Forecast.NightEndHour = parseInt(getEnv("NIGHT_END_HOUR", "13"))
	cfg.Forecast.IllumThreshold = parseFloat(getEnv("ILLUM_THRESHOLD", "2"))
	cfg.Forecast.VisThreshold = parseFloat(getEnv("VIS_THRESHOLD", "20"))
	cfg.Forecast.CoverThreshold = parseFloat(getEnv("COVER_THRESHOLD", "5"))

	// Scheduler configuration (daemon mode), cron spec in UTC
	cfg.Scheduler.CronSchedule = getEnv("CRON_SCHEDULE", "0 18 * * *")

	// Circuit breaker configuration
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Retry configuration
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "3"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Weather.APIKey == "" {
		return fmt.Errorf("WEATHER_API_KEY is required")
	}
	if c.Forecast.NightStartHour < 0 || c.Forecast.NightStartHour > 23 {
		return fmt.Errorf("NIGHT_START_HOUR must be in [0, 23], got %d", c.Forecast.NightStartHour)
	}
	if c.Forecast.NightEndHour < 1 || c.Forecast.NightEndHour > 24 {
		return fmt.Errorf("NIGHT_END_HOUR must be in [1, 24], got %d", c.Forecast.NightEndHour)
	}
	if c.Forecast.NightStartHour >= c.Forecast.NightEndHour {
		return fmt.Errorf("nighttime window is empty: start %d >= end %d",
			c.Forecast.NightStartHour, c.Forecast.NightEndHour)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}
