package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// AttendanceConfig holds attendance-core policy knobs.
type AttendanceConfig struct {
	// SiteTimezone is the IANA zone used to derive "today" and "now" on the
	// server side; the device clock is never trusted for dates.
	SiteTimezone string

	// GeofenceCacheTTL bounds how stale a cached geofence read may be.
	GeofenceCacheTTL time.Duration

	// StorageTimeout caps every storage call so no request hangs.
	StorageTimeout time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "fichado"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "12h"),
	}

	// Attendance configuration
	cacheTTL, err := time.ParseDuration(getEnv("GEOFENCE_CACHE_TTL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOFENCE_CACHE_TTL: %w", err)
	}
	storageTimeout, err := time.ParseDuration(getEnv("STORAGE_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_TIMEOUT: %w", err)
	}
	config.Attendance = AttendanceConfig{
		SiteTimezone:     getEnv("SITE_TIMEZONE", "America/Lima"),
		GeofenceCacheTTL: cacheTTL,
		StorageTimeout:   storageTimeout,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.Attendance.SiteTimezone); err != nil {
		return fmt.Errorf("invalid SITE_TIMEZONE %q: %w", c.Attendance.SiteTimezone, err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
