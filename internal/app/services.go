package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursekeeper-backend/internal/data/repos"
	"github.com/yungbote/coursekeeper-backend/internal/observability"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
	"github.com/yungbote/coursekeeper-backend/internal/services"
)

type Services struct {
	Catalog services.CatalogService
	Probe   services.ProbeService
	Report  services.ReportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, set repos.Set, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	catalog := services.NewCatalogService(db, log, set, clients.Cache, cfg.Cache, metrics)
	return Services{
		Catalog: catalog,
		Probe:   services.NewProbeService(log, nil, metrics),
		Report:  services.NewReportService(log, catalog, clients.Mailer),
	}
}
