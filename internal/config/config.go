// Package config provides configuration management for the camera settings bot.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Reddit   RedditConfig
	Ingest   IngestConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds the ops HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// RedditConfig holds the reddit gateway configuration for a script app
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	Subreddit    string
	PollInterval time.Duration
	CommentLimit int
	// RequestsPerSecond paces outbound gateway calls
	RequestsPerSecond float64
}

// IngestConfig holds the settings source refresh configuration
type IngestConfig struct {
	SourceURL string
	// Schedule is a cron expression for the periodic refresh
	Schedule       string
	RequestTimeout time.Duration
}

// CacheConfig holds reply cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// DefaultSourceURL is the settings table the ingestion source scrapes.
const DefaultSourceURL = "https://liquipedia.net/rocketleague/List_of_player_camera_settings"

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// .env file is optional - environment variables can be set directly
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "camsettings"),
				User:           getEnv("POSTGRES_USER", "camsettings"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
		},
		Reddit: RedditConfig{
			ClientID:          getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret:      getEnv("REDDIT_CLIENT_SECRET", ""),
			Username:          getEnv("REDDIT_USER", ""),
			Password:          getEnv("REDDIT_PASS", ""),
			UserAgent:         getEnv("REDDIT_USER_AGENT", "camsettings-bot/1.0"),
			Subreddit:         getEnv("REDDIT_SUBREDDIT", "RocketLeague"),
			PollInterval:      getEnvAsDuration("REDDIT_POLL_INTERVAL", 10*time.Second),
			CommentLimit:      getEnvAsInt("REDDIT_COMMENT_LIMIT", 25),
			RequestsPerSecond: getEnvAsFloat("REDDIT_REQUESTS_PER_SECOND", 1.0),
		},
		Ingest: IngestConfig{
			SourceURL:      getEnv("INGEST_SOURCE_URL", DefaultSourceURL),
			Schedule:       getEnv("INGEST_SCHEDULE", "0 */6 * * *"),
			RequestTimeout: getEnvAsDuration("INGEST_REQUEST_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// Validate checks the fields the bot cannot run without
func (c *Config) Validate() error {
	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		return fmt.Errorf("reddit client credentials are required")
	}
	if c.Reddit.Username == "" || c.Reddit.Password == "" {
		return fmt.Errorf("reddit account credentials are required")
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
