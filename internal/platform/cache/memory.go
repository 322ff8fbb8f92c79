package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type memoryCache struct {
	log *logger.Logger
	c   *gocache.Cache
	ttl time.Duration
}

// NewMemory keeps entries in process. A zero CleanupInterval disables the janitor goroutine;
// expired entries are then only dropped on read.
func NewMemory(log *logger.Logger, cfg Config) Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &memoryCache{
		log: log.With("service", "MemoryCache"),
		c:   gocache.New(ttl, cfg.CleanupInterval),
		ttl: ttl,
	}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		m.c.Delete(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

func (m *memoryCache) DeletePrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for key := range m.c.Items() {
		if strings.HasPrefix(key, prefix) {
			m.c.Delete(key)
			n++
		}
	}
	return n, nil
}

func (m *memoryCache) Close() error {
	m.c.Flush()
	return nil
}
