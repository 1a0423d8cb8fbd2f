package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers
const (
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion        string
	DynamoDBTable    string
	DynamoDBEndpoint string
	EventBusName     string

	// Store configuration
	StoreDriver    string
	SQLitePath     string
	ReadCacheTTL   time.Duration
	PersistTimeout time.Duration

	// Circuit breaker around the store
	BreakerEnabled     bool
	BreakerMaxRequests int
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
	BreakerMinRequests int
	BreakerThreshold   float64

	// Game configuration
	GameTimezone  string
	SelectorsFile string
	WatchSelector bool

	// Browser configuration
	BrowserExecutable string
	InstallBrowser    bool

	// Logging
	LogLevel string

	// Authentication for the authoring endpoint
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics      bool
	EnableTracing      bool
	EnableCORS         bool
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBTable:    getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE_NAME", "DailyTensGames")),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		EventBusName:     getEnv("EVENT_BUS_NAME", ""),

		StoreDriver:    getEnv("STORE_DRIVER", StoreDynamoDB),
		SQLitePath:     getEnv("SQLITE_PATH", "dailytens.db"),
		ReadCacheTTL:   getEnvDuration("READ_CACHE_TTL", 10*time.Minute),
		PersistTimeout: getEnvDuration("PERSIST_TIMEOUT", 5*time.Second),

		BreakerEnabled:     getEnvBool("BREAKER_ENABLED", true),
		BreakerMaxRequests: getEnvInt("BREAKER_MAX_REQUESTS", 5),
		BreakerInterval:    getEnvDuration("BREAKER_INTERVAL", 30*time.Second),
		BreakerTimeout:     getEnvDuration("BREAKER_TIMEOUT", 60*time.Second),
		BreakerMinRequests: getEnvInt("BREAKER_MIN_REQUESTS", 5),
		BreakerThreshold:   getEnvFloat("BREAKER_FAILURE_THRESHOLD", 0.8),

		GameTimezone:  getEnv("GAME_TIMEZONE", "UTC"),
		SelectorsFile: getEnv("SELECTORS_FILE", ""),
		WatchSelector: getEnvBool("WATCH_SELECTORS", false),

		BrowserExecutable: getEnv("BROWSER_EXECUTABLE", ""),
		InstallBrowser:    getEnvBool("INSTALL_BROWSER", false),

		JWTSecret: getEnv("AUTHORING_JWT_SECRET", ""),
		JWTIssuer: getEnv("AUTHORING_JWT_ISSUER", "dailytens"),

		LogLevel:           getEnv("LOG_LEVEL", "info"),
		EnableMetrics:      getEnvBool("ENABLE_METRICS", true),
		EnableTracing:      getEnvBool("ENABLE_TRACING", false),
		EnableCORS:         getEnvBool("ENABLE_CORS", true),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required for the dynamodb store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.BreakerThreshold <= 0 || c.BreakerThreshold > 1 {
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be in (0, 1]")
	}
	// gobreaker takes these as uint32
	for name, v := range map[string]int{
		"BREAKER_MAX_REQUESTS": c.BreakerMaxRequests,
		"BREAKER_MIN_REQUESTS": c.BreakerMinRequests,
	} {
		if v < 0 || int64(v) > math.MaxUint32 {
			return fmt.Errorf("%s must be between 0 and %d, got %d", name, uint32(math.MaxUint32), v)
		}
	}
	if c.BreakerInterval < 0 || c.BreakerTimeout < 0 {
		return fmt.Errorf("BREAKER_INTERVAL and BREAKER_TIMEOUT must not be negative")
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("AUTHORING_JWT_SECRET is required in production")
	}

	return nil
}

// Location resolves GameTimezone, which defines the calendar "today"
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.GameTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid GAME_TIMEZONE %q: %w", c.GameTimezone, err)
	}
	return loc, nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "5m")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
