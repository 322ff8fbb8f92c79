package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/coursekeeper-backend/internal/platform/envutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Cache stores opaque values under string keys. Implementations are safe for concurrent use.
type Cache interface {
	// Get reports false without error on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix drops every key starting with prefix and returns how many went.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}

type Config struct {
	Backend         string
	TTL             time.Duration
	CleanupInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Shared reports whether the backend is visible to other processes. The memory backend
// lives and dies with the process that built it.
func (c Config) Shared() bool {
	return c.Backend == BackendRedis
}

func ConfigFromEnv() Config {
	return Config{
		Backend:         strings.ToLower(envutil.String("CACHE_BACKEND", BackendMemory)),
		TTL:             envutil.Seconds("LOOKUP_CACHE_TTL_SECONDS", 5*time.Minute),
		CleanupInterval: envutil.Seconds("CACHE_CLEANUP_SECONDS", 10*time.Minute),
		RedisAddr:       envutil.String("REDIS_ADDR", ""),
		RedisPassword:   envutil.String("REDIS_PASSWORD", ""),
		RedisDB:         envutil.Int("REDIS_DB", 0),
		RedisPrefix:     envutil.String("REDIS_CACHE_PREFIX", "coursekeeper:"),
	}
}

func New(log *logger.Logger, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(log, cfg), nil
	case BackendRedis:
		return NewRedis(log, cfg)
	default:
		return nil, fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.Backend)
	}
}

func NewFromEnv(log *logger.Logger) (Cache, error) {
	return New(log, ConfigFromEnv())
}
