package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Messenger MessengerConfig
	JWT       JWTConfig
	Store     StoreConfig
	Firebase  FirebaseConfig
	S3        S3Config
	Catalog   CatalogConfig
	Workout   WorkoutConfig
	OTEL      OTELConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	BodyLimitMB int64
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// MessengerConfig holds the Messenger platform credentials
type MessengerConfig struct {
	AppSecret       string // signs inbound webhook bodies
	ValidationToken string // echoed back during webhook setup
	PageAccessToken string
	GraphURL        string
}

// JWTConfig holds the admin API signing secret
type JWTConfig struct {
	Secret string
}

// StoreConfig selects where workouts are persisted
type StoreConfig struct {
	Backend string // "mongo" or "firestore"
}

// FirebaseConfig holds Firebase Admin SDK configuration
type FirebaseConfig struct {
	ProjectID   string
	PrivateKey  string // Base64 encoded
	ClientEmail string
}

// S3Config holds the object store the catalog seeder can read from
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// CatalogConfig tunes exercise pool caching
type CatalogConfig struct {
	CacheTTL time.Duration
}

// WorkoutConfig tunes workout persistence
type WorkoutConfig struct {
	LockTTL  time.Duration
	DedupTTL time.Duration
}

// OTELConfig holds OpenTelemetry exporter configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a Config from the current environment without validating it
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			BodyLimitMB: getEnvAsInt64("BODY_LIMIT_MB", 1),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "circuitbot"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Messenger: MessengerConfig{
			AppSecret:       getEnv("MESSENGER_APP_SECRET", ""),
			ValidationToken: getEnv("MESSENGER_VALIDATION_TOKEN", ""),
			PageAccessToken: getEnv("MESSENGER_PAGE_ACCESS_TOKEN", ""),
			GraphURL:        getEnv("MESSENGER_GRAPH_URL", "https://graph.facebook.com/v19.0"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Store: StoreConfig{
			Backend: getEnv("WORKOUT_STORE", StoreMongo),
		},
		Firebase: FirebaseConfig{
			ProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
			PrivateKey:  getEnv("FIREBASE_PRIVATE_KEY", ""),
			ClientEmail: getEnv("FIREBASE_CLIENT_EMAIL", ""),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", "http://localhost:8333"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "circuitbot"),
			AccessKey: getEnv("S3_ACCESS_KEY", "any"),
			SecretKey: getEnv("S3_SECRET_KEY", "any"),
		},
		Catalog: CatalogConfig{
			CacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		},
		Workout: WorkoutConfig{
			LockTTL:  getEnvAsDuration("WORKOUT_LOCK_TTL", 10*time.Second),
			DedupTTL: getEnvAsDuration("DEDUP_TTL", 24*time.Hour),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "circuitbot"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  getEnvAsBool("LOG_JSON", false),
		},
	}
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.Messenger.AppSecret == "" {
		return fmt.Errorf("MESSENGER_APP_SECRET is required")
	}
	if c.Messenger.ValidationToken == "" {
		return fmt.Errorf("MESSENGER_VALIDATION_TOKEN is required")
	}
	if c.Messenger.PageAccessToken == "" {
		return fmt.Errorf("MESSENGER_PAGE_ACCESS_TOKEN is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.Store.Backend {
	case StoreMongo:
	case StoreFirestore:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore store")
		}
		if c.Firebase.PrivateKey == "" {
			return fmt.Errorf("FIREBASE_PRIVATE_KEY is required for the firestore store")
		}
		if c.Firebase.ClientEmail == "" {
			return fmt.Errorf("FIREBASE_CLIENT_EMAIL is required for the firestore store")
		}
	default:
		return fmt.Errorf("unknown WORKOUT_STORE %q", c.Store.Backend)
	}

	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when OTEL_ENABLED is set")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
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
		return defaultValue
	}
	return value
}
