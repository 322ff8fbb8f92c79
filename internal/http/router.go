package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	httpH "github.com/yungbote/coursekeeper-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursekeeper-backend/internal/http/middleware"
	"github.com/yungbote/coursekeeper-backend/internal/observability"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	AllowOrigin []string
	// ProbeLimiter throttles the credential probe. Nil disables the limit.
	ProbeLimiter *rate.Limiter

	HealthHandler  *httpH.HealthHandler
	ProbeHandler   *httpH.ProbeHandler
	CatalogHandler *httpH.CatalogHandler
	ReportHandler  *httpH.ReportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowOrigin))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/metrics", cfg.HealthHandler.Metrics)
	}

	api := r.Group("/api")
	{
		// Credential probe
		if cfg.ProbeHandler != nil {
			api.GET("/test/apify", httpMW.RateLimit(cfg.ProbeLimiter), cfg.ProbeHandler.TestApify)
		}

		// Subjects and timeline
		if cfg.CatalogHandler != nil {
			api.GET("/subjects", cfg.CatalogHandler.ListSubjects)
			api.GET("/subjects/:id/timeline", cfg.CatalogHandler.GetTimeline)
			api.GET("/subjects/:id/years/:year", cfg.CatalogHandler.GetYear)
		}

		// Reports
		if cfg.ReportHandler != nil {
			api.POST("/subjects/:id/reports/email", cfg.ReportHandler.EmailReport)
		}
	}

	return r
}
