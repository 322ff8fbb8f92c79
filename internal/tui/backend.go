package tui

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/services"
)

// Backend is what the views read from and send through.
type Backend interface {
	ResolveSubject(ctx context.Context, title string) (*types.Subject, error)
	Timeline(ctx context.Context, subjectID uuid.UUID, baselineYear int) ([]types.TimelineEntry, error)
	Lookup(ctx context.Context, subjectID uuid.UUID, year int) (*types.YearLookup, error)
	EmailYear(ctx context.Context, to string, subjectID uuid.UUID, baselineYear, year int) error
}

type serviceBackend struct {
	catalog services.CatalogService
	report  services.ReportService
}

func NewServiceBackend(catalog services.CatalogService, report services.ReportService) Backend {
	return &serviceBackend{catalog: catalog, report: report}
}

func (b *serviceBackend) ResolveSubject(ctx context.Context, title string) (*types.Subject, error) {
	return b.catalog.ResolveSubject(dbctx.Context{Ctx: ctx}, title)
}

func (b *serviceBackend) Timeline(ctx context.Context, subjectID uuid.UUID, baselineYear int) ([]types.TimelineEntry, error) {
	return b.catalog.Timeline(dbctx.Context{Ctx: ctx}, subjectID, baselineYear)
}

func (b *serviceBackend) Lookup(ctx context.Context, subjectID uuid.UUID, year int) (*types.YearLookup, error) {
	return b.catalog.Lookup(dbctx.Context{Ctx: ctx}, subjectID, year)
}

func (b *serviceBackend) EmailYear(ctx context.Context, to string, subjectID uuid.UUID, baselineYear, year int) error {
	_, err := b.report.EmailYear(ctx, to, subjectID, baselineYear, year)
	return err
}
