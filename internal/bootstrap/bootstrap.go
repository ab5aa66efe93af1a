// Package bootstrap builds the shared infrastructure used by both the HTTP
// server and the mediactl command.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	"marketmedia/internal/caching"
	"marketmedia/internal/config"
	"marketmedia/internal/services"

	"github.com/labstack/gommon/log"
)

// NewLogger returns a gommon logger at the configured level.
func NewLogger(prefix, level string) *log.Logger {
	logger := log.New(prefix)
	logger.SetOutput(os.Stdout)
	logger.SetHeader(`{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}"}`)
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel maps a LOG_LEVEL value onto a gommon level. Unknown values
// fall back to INFO.
func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// NewObjectStore opens the configured blob store backend.
func NewObjectStore(ctx context.Context, cfg config.StorageConfig, logger *log.Logger) (services.ObjectStore, error) {
	switch cfg.Backend {
	case "minio":
		minioSvc, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket, cfg.MinioPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MinIO service: %w", err)
		}
		if err := minioSvc.EnsureBucketExists(ctx); err != nil {
			return nil, fmt.Errorf("minio bucket %q: %w", cfg.MinioBucket, err)
		}
		logger.Infof("serving images from minio bucket %s", cfg.MinioBucket)
		return minioSvc, nil
	case "local", "":
		logger.Infof("serving images from %s", cfg.UploadsDir)
		return services.NewLocalObjectStore(cfg.UploadsDir), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// NewCache returns a redis backed ownership cache, or a no-op cache when
// redis is disabled or unreachable.
func NewCache(cfg config.RedisConfig, logger *log.Logger) caching.CacheService {
	if !cfg.Enabled {
		return caching.NewNoopCacheService()
	}
	cache := caching.NewRedisCacheService(cfg.Addr, cfg.Password, cfg.DB)
	if err := cache.Ping(context.Background()); err != nil {
		logger.Warnf("redis unavailable at %s, ownership cache disabled: %v", cfg.Addr, err)
		return caching.NewNoopCacheService()
	}
	return cache
}
