package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/coursekeeper-backend/internal/data/repos"
	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/observability"
	"github.com/yungbote/coursekeeper-backend/internal/platform/cache"
	"github.com/yungbote/coursekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type CatalogService interface {
	// ListSubjects matches title case-insensitively; an empty title lists every subject.
	ListSubjects(dbc dbctx.Context, title string) ([]*types.Subject, error)
	ResolveSubject(dbc dbctx.Context, title string) (*types.Subject, error)
	GetSubject(dbc dbctx.Context, subjectID uuid.UUID) (*types.Subject, error)
	Timeline(dbc dbctx.Context, subjectID uuid.UUID, baselineYear int) ([]types.TimelineEntry, error)
	Lookup(dbc dbctx.Context, subjectID uuid.UUID, year int) (*types.YearLookup, error)
	// InvalidateSubject drops every cached lookup of the subject.
	InvalidateSubject(ctx context.Context, subjectID uuid.UUID) (int, error)
}

type catalogService struct {
	db      *gorm.DB
	log     *logger.Logger
	repos   repos.Set
	cache   cache.Cache
	cfg     cache.Config
	metrics *observability.Metrics
	group   singleflight.Group
}

// NewCatalogService wires the lookup path. lookupCache may be nil to disable caching.
func NewCatalogService(db *gorm.DB, log *logger.Logger, set repos.Set, lookupCache cache.Cache, cacheCfg cache.Config, metrics *observability.Metrics) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{
		db:      db,
		log:     serviceLog,
		repos:   set,
		cache:   lookupCache,
		cfg:     cacheCfg,
		metrics: metrics,
	}
}

func lookupKey(subjectID uuid.UUID, year int) string {
	return fmt.Sprintf("%s%d", lookupPrefix(subjectID), year)
}

func lookupPrefix(subjectID uuid.UUID) string {
	return "lookup:" + subjectID.String() + ":"
}

func (cs *catalogService) ListSubjects(dbc dbctx.Context, title string) ([]*types.Subject, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	if strings.TrimSpace(title) == "" {
		return cs.repos.Subjects.List(dbc, 0)
	}
	return cs.repos.Subjects.GetByTitle(dbc, title)
}

func (cs *catalogService) ResolveSubject(dbc dbctx.Context, title string) (*types.Subject, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	subjects, err := cs.repos.Subjects.GetByTitle(dbc, title)
	if err != nil {
		return nil, fmt.Errorf("resolve subject %q: %w", title, err)
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: %q", catalog.ErrSubjectNotFound, title)
	}
	return subjects[0], nil
}

func (cs *catalogService) GetSubject(dbc dbctx.Context, subjectID uuid.UUID) (*types.Subject, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	subjects, err := cs.repos.Subjects.GetByIDs(dbc, []uuid.UUID{subjectID})
	if err != nil {
		return nil, fmt.Errorf("get subject %s: %w", subjectID, err)
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: %s", catalog.ErrSubjectNotFound, subjectID)
	}
	return subjects[0], nil
}

func (cs *catalogService) Timeline(dbc dbctx.Context, subjectID uuid.UUID, baselineYear int) ([]types.TimelineEntry, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	ctx, span := observability.Tracer().Start(dbc.Ctx, "catalog.timeline")
	defer span.End()
	dbc.Ctx = ctx
	span.SetAttributes(attribute.String("subject_id", subjectID.String()), attribute.Int("baseline_year", baselineYear))

	if _, err := cs.GetSubject(dbc, subjectID); err != nil {
		return nil, err
	}
	events, err := cs.repos.TimelineEvents.ListBySubjectID(dbc, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}
	runs, err := cs.repos.YearRuns.ListBySubjectID(dbc, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list year runs: %w", err)
	}
	completed := make(map[int]bool, len(runs))
	for _, r := range runs {
		if r.Status == catalog.RunCompleted {
			completed[r.Year] = true
		}
	}
	return catalog.BuildTimeline(events, baselineYear, func(year int) bool { return completed[year] }), nil
}

func (cs *catalogService) Lookup(dbc dbctx.Context, subjectID uuid.UUID, year int) (*types.YearLookup, error) {
	dbc.Ctx = ctxutil.Default(dbc.Ctx)
	ctx, span := observability.Tracer().Start(dbc.Ctx, "catalog.lookup")
	defer span.End()
	dbc.Ctx = ctx
	span.SetAttributes(attribute.String("subject_id", subjectID.String()), attribute.Int("year", year))

	key := lookupKey(subjectID, year)
	if cached, ok := cs.fromCache(ctx, key); ok {
		span.SetAttributes(attribute.String("cache", CacheHit))
		return cached, nil
	}

	v, err, shared := cs.group.Do(key, func() (any, error) {
		res, err := cs.load(dbc, subjectID, year)
		if err != nil {
			return nil, err
		}
		cs.toCache(ctx, key, res)
		return res, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("cache", CacheMiss), attribute.Bool("shared", shared))

	res := v.(types.YearLookup)
	return &res, nil
}

func (cs *catalogService) load(dbc dbctx.Context, subjectID uuid.UUID, year int) (types.YearLookup, error) {
	subject, err := cs.GetSubject(dbc, subjectID)
	if err != nil {
		return types.YearLookup{}, err
	}

	run, err := cs.repos.YearRuns.GetBySubjectAndYear(dbc, subjectID, year)
	if err != nil {
		return types.YearLookup{}, fmt.Errorf("get year run: %w", err)
	}
	if run != nil && run.Status == catalog.RunCompleted {
		diffs, err := cs.repos.YearDiffs.ListByRunIDs(dbc, []uuid.UUID{run.ID})
		if err != nil {
			return types.YearLookup{}, fmt.Errorf("list year diffs: %w", err)
		}
		items, err := cs.repos.CanonItems.ListByDisciplineYear(dbc, subject.Discipline, year)
		if err != nil {
			return types.YearLookup{}, fmt.Errorf("list canon items: %w", err)
		}
		data := catalog.AssembleYear(run, diffs, items)
		return types.YearLookup{Outcome: catalog.OutcomeFound, Data: &data}, nil
	}

	if catalog.InTimeline(year) {
		data := catalog.Synthesize(subject.Title, year)
		return types.YearLookup{Outcome: catalog.OutcomeSynthesized, Data: &data}, nil
	}
	return types.YearLookup{Outcome: catalog.OutcomeNotFound}, nil
}

func (cs *catalogService) fromCache(ctx context.Context, key string) (*types.YearLookup, bool) {
	if cs.cache == nil {
		return nil, false
	}
	raw, ok, err := cs.cache.Get(ctx, key)
	if err != nil {
		cs.metrics.ObserveCache(CacheError)
		cs.log.Warn("Lookup cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		cs.metrics.ObserveCache(CacheMiss)
		return nil, false
	}
	var res types.YearLookup
	if err := json.Unmarshal(raw, &res); err != nil {
		cs.metrics.ObserveCache(CacheError)
		cs.log.Warn("Lookup cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	cs.metrics.ObserveCache(CacheHit)
	return &res, true
}

func (cs *catalogService) toCache(ctx context.Context, key string, res types.YearLookup) {
	if cs.cache == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		cs.log.Warn("Lookup cache encode failed", "key", key, "error", err)
		return
	}
	if err := cs.cache.Set(ctx, key, raw, cs.cfg.TTL); err != nil {
		cs.metrics.ObserveCache(CacheError)
		cs.log.Warn("Lookup cache write failed", "key", key, "error", err)
	}
}

func (cs *catalogService) InvalidateSubject(ctx context.Context, subjectID uuid.UUID) (int, error) {
	if cs.cache == nil {
		return 0, nil
	}
	n, err := cs.cache.DeletePrefix(ctxutil.Default(ctx), lookupPrefix(subjectID))
	if err != nil {
		return 0, fmt.Errorf("invalidate lookups of %s: %w", subjectID, err)
	}
	cs.log.Debug("Invalidated cached lookups", "subject_id", subjectID, "count", n)
	return n, nil
}
