package services

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/coursekeeper-backend/internal/data/repos"
	"github.com/yungbote/coursekeeper-backend/internal/data/repos/testutil"
	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/platform/cache"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/seed"
)

type catalogFixture struct {
	svc       CatalogService
	cache     cache.Cache
	fixture   *seed.Fixture
	subjectID uuid.UUID
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)

	fixture, err := seed.LoadFixture()
	require.NoError(t, err)
	seeder := seed.NewSeeder(db, log, set, fixture, seed.Config{LockPath: filepath.Join(t.TempDir(), "seed.lock")})
	seeder.Rand = rand.New(rand.NewPCG(3, 4))
	report, err := seeder.Run(context.Background())
	require.NoError(t, err)

	cfg := cache.Config{TTL: time.Minute}
	c := cache.NewMemory(log, cfg)
	t.Cleanup(func() { _ = c.Close() })

	return &catalogFixture{
		svc:       NewCatalogService(db, log, set, c, cfg, nil),
		cache:     c,
		fixture:   fixture,
		subjectID: report.SubjectID,
	}
}

func dbcFor(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }

func TestLookupFoundMatchesFixture(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	for _, y := range f.fixture.Years {
		res, err := f.svc.Lookup(dbcFor(ctx), f.subjectID, y.Year)
		require.NoError(t, err)
		require.Equal(t, catalog.OutcomeFound, res.Outcome, "year %d", y.Year)
		require.NotNil(t, res.Data)

		want := catalog.YearData{
			Year:        y.Year,
			Summary:     y.Summary,
			Description: y.Description,
			Changes:     y.Changes,
			Papers:      y.Papers,
			Videos:      y.Videos,
		}
		if diff := cmp.Diff(want, *res.Data); diff != "" {
			t.Fatalf("year %d mismatch (-want +got):\n%s", y.Year, diff)
		}
	}
}

func TestLookupSynthesizedAndNotFound(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	res, err := f.svc.Lookup(dbcFor(ctx), f.subjectID, 2013)
	require.NoError(t, err)
	assert.Equal(t, catalog.OutcomeSynthesized, res.Outcome)
	require.NotNil(t, res.Data)
	assert.Equal(t, "Incremental improvements in computer vision", res.Data.Summary)
	assert.Equal(t, catalog.Synthesize("Computer Vision", 2013), *res.Data)

	for _, year := range []int{2008, 2025, 1999} {
		res, err := f.svc.Lookup(dbcFor(ctx), f.subjectID, year)
		require.NoError(t, err)
		assert.Equal(t, catalog.OutcomeNotFound, res.Outcome, "year %d", year)
		assert.Nil(t, res.Data, "year %d", year)
	}
}

// Every year of the timeline range yields patch notes.
func TestLookupCoversTimelineRange(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	hand := map[int]bool{}
	for _, y := range f.fixture.YearNumbers() {
		hand[y] = true
	}
	for year := catalog.TimelineFrom; year <= catalog.TimelineTo; year++ {
		res, err := f.svc.Lookup(dbcFor(ctx), f.subjectID, year)
		require.NoError(t, err)
		require.NotNil(t, res.Data, "year %d", year)
		if hand[year] {
			assert.Equal(t, catalog.OutcomeFound, res.Outcome, "year %d", year)
		} else {
			assert.Equal(t, catalog.OutcomeSynthesized, res.Outcome, "year %d", year)
		}
		assert.Equal(t, year, res.Data.Year)
	}
}

func TestLookupUnknownSubject(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.Lookup(dbcFor(context.Background()), uuid.New(), 2012)
	require.ErrorIs(t, err, catalog.ErrSubjectNotFound)
}

func TestLookupCachesAndInvalidates(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	first, err := f.svc.Lookup(dbcFor(ctx), f.subjectID, 2012)
	require.NoError(t, err)

	_, ok, err := f.cache.Get(ctx, lookupKey(f.subjectID, 2012))
	require.NoError(t, err)
	require.True(t, ok, "lookup should be cached")

	second, err := f.svc.Lookup(dbcFor(ctx), f.subjectID, 2012)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = f.svc.Lookup(dbcFor(ctx), f.subjectID, 2030)
	require.NoError(t, err)

	n, err := f.svc.InvalidateSubject(ctx, f.subjectID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, err = f.cache.Get(ctx, lookupKey(f.subjectID, 2012))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupConcurrent(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]catalog.Outcome, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Lookup(dbcFor(ctx), f.subjectID, 2015)
			errs[i] = err
			if res != nil {
				results[i] = res.Outcome
			}
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, catalog.OutcomeFound, results[i])
	}
}

func TestTimeline(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	entries, err := f.svc.Timeline(dbcFor(ctx), f.subjectID, 2008)
	require.NoError(t, err)
	require.Len(t, entries, catalog.TimelineTo-catalog.TimelineFrom+1)

	byYear := map[int]catalog.TimelineEntry{}
	for _, e := range entries {
		byYear[e.Year] = e
	}
	assert.True(t, byYear[2012].MustLearn)
	assert.True(t, byYear[2012].HasNotes)
	assert.Equal(t, 4, byYear[2012].YearsAfterBaseline)
	assert.False(t, byYear[2013].MustLearn)
	assert.False(t, byYear[2013].HasNotes)

	later, err := f.svc.Timeline(dbcFor(ctx), f.subjectID, 2015)
	require.NoError(t, err)
	require.Len(t, later, catalog.TimelineTo-2015+1)
	assert.Equal(t, 2015, later[0].Year)
	assert.Equal(t, 0, later[0].YearsAfterBaseline)

	future, err := f.svc.Timeline(dbcFor(ctx), f.subjectID, 2030)
	require.NoError(t, err)
	assert.NotNil(t, future)
	assert.Empty(t, future)

	_, err = f.svc.Timeline(dbcFor(ctx), uuid.New(), 2008)
	require.ErrorIs(t, err, catalog.ErrSubjectNotFound)
}

func TestResolveAndListSubjects(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	s, err := f.svc.ResolveSubject(dbcFor(ctx), "computer vision")
	require.NoError(t, err)
	assert.Equal(t, f.subjectID, s.ID)

	_, err = f.svc.ResolveSubject(dbcFor(ctx), "Astrology")
	require.ErrorIs(t, err, catalog.ErrSubjectNotFound)

	all, err := f.svc.ListSubjects(dbcFor(ctx), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
