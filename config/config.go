package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort     string
	ServerHost     string
	TrustedProxies []string
	CORSOrigins    []string

	// Database configuration
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration. An empty RedisURL keeps the session cache in memory.
	RedisURL      string
	RedisPassword string

	// Session configuration
	SecretKey  string
	SessionTTL time.Duration

	// Backend API used by the form pages
	APIBaseURL string
	APITimeout time.Duration

	// Recommendation pipeline
	DatasetPath     string
	DatasetS3Bucket string
	DatasetS3Key    string
	AWSRegion       string
	ModelDir        string
	PipelineConfig  string

	RateLimitPerHour int
	LogLevel         string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI, Development, Test:
		if err := loadEnvConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
		}
	case Production:
		if err := loadEnvConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
		loadProdSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig reads every setting from the environment, falling back to
// docker secrets for the sensitive values and to local defaults otherwise.
func loadEnvConfig(cfg *Config) error {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "")
	cfg.TrustedProxies = splitList(getEnv("TRUSTED_PROXIES", "127.0.0.1,::1"))
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:8080"))

	cfg.DBDriver = getEnv("DB_DRIVER", "sqlite")
	cfg.DBPath = getEnv("DB_PATH", "smartplate.db")
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBPassword = getEnvOrSecret("DB_PASSWORD", "db_password")
	cfg.DBName = getEnv("DB_NAME", "smartplate")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.RedisPassword = getEnvOrSecret("REDIS_PASSWORD", "redis_password")

	cfg.SecretKey = getEnvOrSecret("SECRET_KEY", "secret_key")
	if cfg.SecretKey == "" && GetEnvironment() != Production {
		cfg.SecretKey = "dev-secret-key"
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return err
	}
	if cfg.APITimeout, err = getDuration("API_TIMEOUT", 15*time.Second); err != nil {
		return err
	}
	cfg.APIBaseURL = getEnv("API_BASE_URL", "http://127.0.0.1:"+cfg.ServerPort)

	cfg.DatasetPath = getEnv("DATASET_PATH", filepath.Join("data", "nutrition_sample.csv"))
	cfg.DatasetS3Bucket = getEnv("DATASET_S3_BUCKET", "")
	cfg.DatasetS3Key = getEnv("DATASET_S3_KEY", "nutrition_sample.csv")
	cfg.AWSRegion = getEnv("AWS_REGION", "us-east-1")
	cfg.ModelDir = getEnv("MODEL_DIR", "model")
	cfg.PipelineConfig = getEnv("PIPELINE_CONFIG", filepath.Join("configs", "pipeline.yaml"))

	limit := getEnv("RATE_LIMIT_PER_HOUR", "60")
	if cfg.RateLimitPerHour, err = strconv.Atoi(limit); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_PER_HOUR %q: %w", limit, err)
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return nil
}

// loadProdSecrets lets docker secrets override the environment in production
func loadProdSecrets(cfg *Config) {
	if v := readSecret("db_user"); v != "" {
		cfg.DBUser = v
	}
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("redis_url"); v != "" {
		cfg.RedisURL = v
	}
	if v := readSecret("secret_key"); v != "" {
		cfg.SecretKey = v
	}
}

// ServerAddr returns the listen address for the HTTP server
func (c *Config) ServerAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds the connection string for the postgres driver
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvOrSecret(key, secret string) string {
	if v := getEnv(key, ""); v != "" {
		return v
	}
	return readSecret(secret)
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
