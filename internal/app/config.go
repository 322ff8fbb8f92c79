package app

import (
	"github.com/yungbote/coursekeeper-backend/internal/data/db"
	httpMW "github.com/yungbote/coursekeeper-backend/internal/http/middleware"
	"github.com/yungbote/coursekeeper-backend/internal/observability"
	"github.com/yungbote/coursekeeper-backend/internal/platform/cache"
	"github.com/yungbote/coursekeeper-backend/internal/platform/envutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/sendgrid"
)

type Config struct {
	LogMode     string
	Port        string
	AutoMigrate bool

	AllowOrigins       []string
	ProbeRatePerMinute int

	DB       db.Config
	Cache    cache.Config
	Otel     observability.OtelConfig
	SendGrid sendgrid.Config
}

// LoadConfig reads the environment. Call envutil.LoadDotEnv first for .env support.
func LoadConfig() Config {
	return Config{
		LogMode:            envutil.String("LOG_MODE", "development"),
		Port:               envutil.String("PORT", "8080"),
		AutoMigrate:        envutil.Bool("DB_AUTO_MIGRATE", true),
		AllowOrigins:       httpMW.ParseOrigins(envutil.String("CORS_ALLOW_ORIGINS", "")),
		ProbeRatePerMinute: envutil.Int("PROBE_RATE_PER_MINUTE", 30),
		DB:                 db.ConfigFromEnv(),
		Cache:              cache.ConfigFromEnv(),
		Otel:               observability.OtelConfigFromEnv(),
		SendGrid:           sendgrid.ConfigFromEnv(),
	}
}
