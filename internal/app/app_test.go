package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/coursekeeper-backend/internal/data/db"
	"github.com/yungbote/coursekeeper-backend/internal/platform/cache"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("PROBE_RATE_PER_MINUTE", "")
	t.Setenv("LOOKUP_CACHE_TTL_SECONDS", "")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, db.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, cache.BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 30, cfg.ProbeRatePerMinute)
	assert.True(t, cfg.AutoMigrate)
	assert.NotEmpty(t, cfg.AllowOrigins)
}

func TestNewOnSQLite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOTENV_PATH", filepath.Join(dir, "missing.env"))
	t.Setenv("LOG_MODE", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "coursekeeper.db"))
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CACHE_CLEANUP_SECONDS", "0")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("SENDGRID_API_KEY", "")

	a, err := New(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.Clients.Mailer)
	require.NotNil(t, a.Server)

	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/subjects", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Subjects []map[string]any `json:"subjects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Subjects)
}
