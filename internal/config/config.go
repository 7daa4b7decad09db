package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Scoring   ScoringConfig
	Ingestion IngestionConfig
	Logging   LoggingConfig
	OpenAI    OpenAIConfig
	Auth      AuthConfig
}

// DatabaseConfig holds menu store configuration
type DatabaseConfig struct {
	Driver             string // "postgres" or "sqlite"
	DSN                string // 完整的数据库连接字符串（优先使用）
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	SQLitePath         string
	MaxConnections     int
	MaxIdleConnections int
	AutoMigrate        bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// ScoringConfig holds recommendation score constants
type ScoringConfig struct {
	FavoriteBonus       float64
	LocationMatch       float64
	LocationTableMatch  float64
	LocationDefault     float64
	CuisineMatch        float64
	TopItems            int
	LookaheadDays       int
	AdvisorPromptItems  int
	AdvisorMessageLimit int
}

// IngestionConfig holds dining API ingestion configuration
type IngestionConfig struct {
	APIURL        string
	Timeout       time.Duration
	Freshness     time.Duration
	Interval      time.Duration // 0 disables the scheduler
	RetentionDays int           // menus older than today minus this are deleted
	Timezone      string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	ChatExtraBody   string // JSON string for extra_body
	Timeout         int
	Enabled         bool
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:             strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "campus_dining"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			SQLitePath:         getEnv("SQLITE_PATH", "dining.db"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			AutoMigrate:        getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Scoring: ScoringConfig{
			FavoriteBonus:       getEnvAsFloat("SCORE_FAVORITE_BONUS", 30),
			LocationMatch:       getEnvAsFloat("SCORE_LOCATION_MATCH", 25),
			LocationTableMatch:  getEnvAsFloat("SCORE_LOCATION_TABLE_MATCH", 20),
			LocationDefault:     getEnvAsFloat("SCORE_LOCATION_DEFAULT", 5),
			CuisineMatch:        getEnvAsFloat("SCORE_CUISINE_MATCH", 10),
			TopItems:            getEnvAsInt("SCORE_TOP_ITEMS", 5),
			LookaheadDays:       getEnvAsInt("SCORE_LOOKAHEAD_DAYS", 7),
			AdvisorPromptItems:  getEnvAsInt("ADVISOR_PROMPT_ITEMS", 15),
			AdvisorMessageLimit: getEnvAsInt("ADVISOR_MESSAGE_LIMIT", 120),
		},
		Ingestion: IngestionConfig{
			APIURL:        getEnv("DINING_API_URL", "https://now.dining.cornell.edu/api/1.0/dining/eateries.json"),
			Timeout:       getEnvAsDuration("DINING_API_TIMEOUT", 30*time.Second),
			Freshness:     getEnvAsDuration("INGEST_FRESHNESS", 6*time.Hour),
			Interval:      getEnvAsDuration("INGEST_INTERVAL", 0),
			RetentionDays: getEnvAsInt("INGEST_RETENTION_DAYS", 0),
			Timezone:      getEnv("DINING_TIMEZONE", "America/New_York"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.7),
			ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 0),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 300),
			ChatExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 20),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail at first use
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Ingestion.Freshness <= 0 {
		return fmt.Errorf("INGEST_FRESHNESS must be positive")
	}
	if c.Ingestion.RetentionDays < 0 {
		return fmt.Errorf("INGEST_RETENTION_DAYS must not be negative")
	}
	if c.Scoring.TopItems <= 0 || c.Scoring.TopItems > 5 {
		return fmt.Errorf("SCORE_TOP_ITEMS must be between 1 and 5")
	}
	if c.Scoring.LookaheadDays <= 0 {
		return fmt.Errorf("SCORE_LOOKAHEAD_DAYS must be positive")
	}
	if _, err := time.LoadLocation(c.Ingestion.Timezone); err != nil {
		return fmt.Errorf("invalid DINING_TIMEZONE: %w", err)
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	// 优先使用完整的 DSN
	if c.Database.DSN != "" {
		return c.Database.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// Location returns the dining timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Ingestion.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid bool value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
