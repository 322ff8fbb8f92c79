package app

import (
	"github.com/yungbote/coursekeeper-backend/internal/http"
	httpH "github.com/yungbote/coursekeeper-backend/internal/http/handlers"
	httpMW "github.com/yungbote/coursekeeper-backend/internal/http/middleware"
	"github.com/yungbote/coursekeeper-backend/internal/observability"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Probe   *httpH.ProbeHandler
	Catalog *httpH.CatalogHandler
	Report  *httpH.ReportHandler
}

func wireHandlers(log *logger.Logger, services Services, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(metrics),
		Probe:   httpH.NewProbeHandler(log, services.Probe),
		Catalog: httpH.NewCatalogHandler(log, services.Catalog),
		Report:  httpH.NewReportHandler(log, services.Report),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    serviceName,
		AllowOrigin:    cfg.AllowOrigins,
		ProbeLimiter:   httpMW.PerMinute(cfg.ProbeRatePerMinute),
		HealthHandler:  handlers.Health,
		ProbeHandler:   handlers.Probe,
		CatalogHandler: handlers.Catalog,
		ReportHandler:  handlers.Report,
	})
}
