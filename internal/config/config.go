package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the complete service configuration. Values come from an optional
// TOML file named by CONFIG_FILE, then environment variables (and a local .env
// file) override them.
type Config struct {
	Port        string        `toml:"port"`
	DatabaseURL string        `toml:"database_url"`
	LogLevel    string        `toml:"log_level"`
	Redis       RedisConfig   `toml:"redis"`
	Storage     StorageConfig `toml:"storage"`
	Auth        AuthConfig    `toml:"auth"`
	Media       MediaConfig   `toml:"media"`
}

// RedisConfig contains the ownership cache settings
type RedisConfig struct {
	Enabled  bool          `toml:"enabled"`
	Addr     string        `toml:"addr"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	TTL      time.Duration `toml:"ttl"`
}

// StorageConfig selects where image files are read from
type StorageConfig struct {
	Backend        string `toml:"backend"` // "local" or "minio"
	UploadsDir     string `toml:"uploads_dir"`
	MinioEndpoint  string `toml:"minio_endpoint"`
	MinioAccessKey string `toml:"minio_access_key"`
	MinioSecretKey string `toml:"minio_secret_key"`
	MinioUseSSL    bool   `toml:"minio_use_ssl"`
	MinioBucket    string `toml:"minio_bucket"`
	MinioPrefix    string `toml:"minio_prefix"`
}

// AuthConfig contains access token verification settings
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	JWKSURL   string `toml:"jwks_url"`

	// AdminUserIDs may call the maintenance routes under /api/admin.
	AdminUserIDs []int64 `toml:"admin_user_ids"`
}

// MediaConfig contains resolution and audit settings
type MediaConfig struct {
	PlaceholderPath    string        `toml:"placeholder_path"`
	PromotionMaxAge    time.Duration `toml:"promotion_max_age"`
	DriftAuditInterval time.Duration `toml:"drift_audit_interval"`
}

func defaults() *Config {
	return &Config{
		Port:     "8080",
		LogLevel: "info",
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
		Storage: StorageConfig{
			Backend:        "local",
			UploadsDir:     "./uploads",
			MinioEndpoint:  "localhost:9000",
			MinioAccessKey: "minioadmin",
			MinioSecretKey: "minioadmin",
			MinioBucket:    "marketplace-media",
			MinioPrefix:    "uploads",
		},
		Media: MediaConfig{
			PromotionMaxAge:    5 * time.Minute,
			DriftAuditInterval: 6 * time.Hour,
		},
	}
}

// LoadConfig reads the configuration and validates it.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("WARN: Error loading .env file: %v", err)
		}
	}

	cfg := defaults()
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = getEnvDuration("OWNERSHIP_CACHE_TTL", cfg.Redis.TTL)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.UploadsDir = getEnv("UPLOADS_DIR", cfg.Storage.UploadsDir)
	cfg.Storage.MinioEndpoint = getEnv("MINIO_ENDPOINT", cfg.Storage.MinioEndpoint)
	cfg.Storage.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", cfg.Storage.MinioAccessKey)
	cfg.Storage.MinioSecretKey = getEnv("MINIO_SECRET_KEY", cfg.Storage.MinioSecretKey)
	cfg.Storage.MinioUseSSL = getEnvBool("MINIO_USE_SSL", cfg.Storage.MinioUseSSL)
	cfg.Storage.MinioBucket = getEnv("MINIO_BUCKET", cfg.Storage.MinioBucket)
	cfg.Storage.MinioPrefix = getEnv("MINIO_PREFIX", cfg.Storage.MinioPrefix)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWKSURL = getEnv("JWKS_URL", cfg.Auth.JWKSURL)
	cfg.Auth.AdminUserIDs = getEnvIDs("ADMIN_USER_IDS", cfg.Auth.AdminUserIDs)

	cfg.Media.PlaceholderPath = getEnv("PLACEHOLDER_PATH", cfg.Media.PlaceholderPath)
	cfg.Media.PromotionMaxAge = getEnvDuration("PROMOTION_CACHE_MAX_AGE", cfg.Media.PromotionMaxAge)
	cfg.Media.DriftAuditInterval = getEnvDuration("DRIFT_AUDIT_INTERVAL", cfg.Media.DriftAuditInterval)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR is required for the local storage backend")
		}
	case "minio":
		if c.Storage.MinioEndpoint == "" || c.Storage.MinioBucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		return fmt.Errorf("JWT_SECRET or JWKS_URL is required")
	}
	if c.Media.PromotionMaxAge < 0 {
		return fmt.Errorf("PROMOTION_CACHE_MAX_AGE must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("WARN: invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		log.Printf("WARN: invalid %s=%q, using %t", key, value, fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		log.Printf("WARN: invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

// getEnvIDs parses a comma separated list of positive ids. Invalid entries
// are skipped with a warning.
func getEnvIDs(key string, fallback []int64) []int64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			log.Printf("WARN: ignoring invalid id %q in %s", part, key)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
