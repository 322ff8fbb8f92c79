package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/coursekeeper-backend/internal/platform/cache"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
	"github.com/yungbote/coursekeeper-backend/internal/platform/sendgrid"
)

// Clients are the long-lived outbound dependencies. The probe builds its Apify and arXiv
// clients per request and is not listed here.
type Clients struct {
	Cache  cache.Cache
	Mailer sendgrid.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	lookupCache, err := cache.New(log, cfg.Cache)
	if err != nil {
		return Clients{}, fmt.Errorf("init lookup cache: %w", err)
	}

	mailer, err := sendgrid.New(log, cfg.SendGrid)
	if err != nil {
		if !errors.Is(err, sendgrid.ErrNotConfigured) {
			_ = lookupCache.Close()
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		log.Warn("SendGrid not configured, report emails disabled")
		mailer = nil
	}

	return Clients{Cache: lookupCache, Mailer: mailer}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}
