package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursekeeper-backend/internal/data/repos"
	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/envutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

const (
	diffConfidence = 0.95
	diffImportance = 8
	itemConfidence = 0.9
	itemJitter     = 0.1
)

var ErrSeedLocked = errors.New("another seed run holds the lock")

type Config struct {
	LockPath string
}

func ConfigFromEnv() Config {
	return Config{
		LockPath: envutil.String("SEED_LOCK_PATH", filepath.Join(os.TempDir(), "coursekeeper-seed.lock")),
	}
}

// YearReport is what one fixture year produced.
type YearReport struct {
	Year    int
	RunID   uuid.UUID
	Changes int
	Papers  int
	Videos  int
}

type Report struct {
	UserEmail      string
	SubjectID      uuid.UUID
	SubjectTitle   string
	SubjectCreated bool

	Topics         int
	TimelineEvents int
	YearRuns       int
	YearDiffs      int
	CanonItems     int

	Deleted map[string]int64
	Years   []YearReport
}

// Seeder writes the demo catalog. Each run replaces the subject's topics, timeline, runs and
// diffs, and the fixture years' canon items.
type Seeder struct {
	db      *gorm.DB
	log     *logger.Logger
	repos   repos.Set
	fixture *Fixture
	cfg     Config

	// Rand jitters canon item confidence. Nil uses the global source.
	Rand *rand.Rand
	// Progress, when set, receives one line per completed step.
	Progress func(msg string)
	Now      func() time.Time
}

func NewSeeder(db *gorm.DB, baseLog *logger.Logger, set repos.Set, fixture *Fixture, cfg Config) *Seeder {
	return &Seeder{
		db:      db,
		log:     baseLog.With("service", "Seeder"),
		repos:   set,
		fixture: fixture,
		cfg:     cfg,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	if s.fixture == nil {
		return nil, fmt.Errorf("%w: no fixture loaded", ErrInvalidFixture)
	}

	if s.cfg.LockPath != "" {
		fl := flock.New(s.cfg.LockPath)
		locked, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire seed lock %s: %w", s.cfg.LockPath, err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: %s", ErrSeedLocked, s.cfg.LockPath)
		}
		defer func() { _ = fl.Unlock() }()
	}

	s.progress("Starting database seed")
	report := &Report{Deleted: map[string]int64{}}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		return s.seed(inner, report)
	})
	if err != nil {
		s.log.Error("Seed failed", "error", err)
		return nil, err
	}

	s.progress("Seed completed successfully")
	return report, nil
}

func (s *Seeder) seed(dbc dbctx.Context, report *Report) error {
	f := s.fixture
	now := s.Now()

	user, err := s.repos.Users.UpsertByEmail(dbc, &types.User{Email: f.User.Email, Name: f.User.Name, CreatedAt: now})
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	report.UserEmail = user.Email
	s.progress("Created user " + user.Email)

	subject, created, err := s.repos.Subjects.FindOrCreate(dbc, &types.Subject{
		UserID:       user.ID,
		Title:        f.Subject.Title,
		Discipline:   f.Subject.Discipline,
		BaselineYear: f.Subject.BaselineYear,
		Description:  f.Subject.Description,
		CreatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("find or create subject: %w", err)
	}
	report.SubjectID = subject.ID
	report.SubjectTitle = subject.Title
	report.SubjectCreated = created
	s.progress("Created/found subject " + subject.Title)

	if err := s.clear(dbc, subject, report); err != nil {
		return err
	}

	topics := make([]*types.BaselineTopic, 0, len(f.Topics))
	for _, t := range f.Topics {
		topics = append(topics, &types.BaselineTopic{
			SubjectID:  subject.ID,
			Name:       t.Name,
			Type:       t.Type,
			Category:   t.Category,
			Importance: t.Importance,
			Summary:    fmt.Sprintf("Core %s technique from classical computer vision", t.Category),
			CreatedAt:  now,
		})
	}
	if _, err := s.repos.BaselineTopics.Create(dbc, topics); err != nil {
		return fmt.Errorf("create baseline topics: %w", err)
	}
	report.Topics = len(topics)
	s.progress(fmt.Sprintf("Created %d baseline topics", len(topics)))

	events := make([]*types.TimelineEvent, 0, len(f.Timeline))
	for _, ev := range f.Timeline {
		events = append(events, &types.TimelineEvent{
			SubjectID: subject.ID,
			Year:      ev.Year,
			Headline:  ev.Headline,
			Impact:    ev.Impact,
			CreatedAt: now,
		})
	}
	if _, err := s.repos.TimelineEvents.Create(dbc, events); err != nil {
		return fmt.Errorf("create timeline events: %w", err)
	}
	report.TimelineEvents = len(events)
	s.progress(fmt.Sprintf("Created %d timeline events", len(events)))

	for _, y := range f.Years {
		yr, err := s.seedYear(dbc, subject, y, now)
		if err != nil {
			return fmt.Errorf("year %d: %w", y.Year, err)
		}
		report.Years = append(report.Years, yr)
		report.YearRuns++
		report.YearDiffs += yr.Changes
		report.CanonItems += yr.Papers + yr.Videos
		s.progress(fmt.Sprintf("Created data for year %d", y.Year))
	}
	return nil
}

// clear deletes diffs before runs; diffs reference runs.
func (s *Seeder) clear(dbc dbctx.Context, subject *types.Subject, report *Report) error {
	n, err := s.repos.BaselineTopics.DeleteBySubjectID(dbc, subject.ID)
	if err != nil {
		return fmt.Errorf("clear baseline topics: %w", err)
	}
	report.Deleted["baseline_topic"] = n

	if n, err = s.repos.TimelineEvents.DeleteBySubjectID(dbc, subject.ID); err != nil {
		return fmt.Errorf("clear timeline events: %w", err)
	}
	report.Deleted["timeline_event"] = n

	if n, err = s.repos.YearDiffs.DeleteBySubjectID(dbc, subject.ID); err != nil {
		return fmt.Errorf("clear year diffs: %w", err)
	}
	report.Deleted["year_diff"] = n

	if n, err = s.repos.YearRuns.DeleteBySubjectID(dbc, subject.ID); err != nil {
		return fmt.Errorf("clear year runs: %w", err)
	}
	report.Deleted["year_run"] = n

	if n, err = s.repos.CanonItems.DeleteByDisciplineYears(dbc, subject.Discipline, s.fixture.YearNumbers()); err != nil {
		return fmt.Errorf("clear canon items: %w", err)
	}
	report.Deleted["canon_item"] = n

	s.log.Debug("Cleared previous seed data", "subject_id", subject.ID, "deleted", report.Deleted)
	return nil
}

func (s *Seeder) seedYear(dbc dbctx.Context, subject *types.Subject, y FixtureYear, now time.Time) (YearReport, error) {
	completed := now
	runs, err := s.repos.YearRuns.Create(dbc, []*types.YearRun{{
		SubjectID:   subject.ID,
		Year:        y.Year,
		Status:      catalog.RunCompleted,
		Summary:     y.Summary,
		Description: y.Description,
		CreatedAt:   now,
		CompletedAt: &completed,
	}})
	if err != nil {
		return YearReport{}, fmt.Errorf("create year run: %w", err)
	}
	run := runs[0]

	diffs := make([]*types.YearDiff, 0, len(y.Changes))
	for i, c := range y.Changes {
		title := c.Title
		d := &types.YearDiff{
			RunID:      run.ID,
			Position:   i,
			ChangeType: c.Type,
			Rationale:  c.Rationale,
			Confidence: diffConfidence,
			Evidence:   datatypes.JSON("[]"),
			Importance: diffImportance,
		}
		if c.Type == catalog.ChangeDeprecate {
			d.FromTitle = &title
		} else {
			d.ToTitle = &title
		}
		diffs = append(diffs, d)
	}
	if _, err := s.repos.YearDiffs.Create(dbc, diffs); err != nil {
		return YearReport{}, fmt.Errorf("create year diffs: %w", err)
	}

	items := make([]*types.CanonItem, 0, len(y.Papers)+len(y.Videos))
	for i, p := range y.Papers {
		meta, err := json.Marshal(map[string]string{"authors": p.Authors, "paperType": "research"})
		if err != nil {
			return YearReport{}, err
		}
		items = append(items, &types.CanonItem{
			Discipline: subject.Discipline,
			Year:       y.Year,
			Type:       catalog.ItemPaper,
			Position:   i,
			Title:      p.Title,
			URL:        p.URL,
			Venue:      p.Venue,
			Summary:    p.Authors + ": Groundbreaking research in computer vision",
			Confidence: s.itemConfidence(),
			Metadata:   datatypes.JSON(meta),
			CreatedAt:  now,
		})
	}
	for i, v := range y.Videos {
		meta, err := json.Marshal(map[string]string{"channel": v.Channel})
		if err != nil {
			return YearReport{}, err
		}
		items = append(items, &types.CanonItem{
			Discipline: subject.Discipline,
			Year:       y.Year,
			Type:       catalog.ItemVideo,
			Position:   i,
			Title:      v.Title,
			URL:        v.URL,
			Confidence: s.itemConfidence(),
			Metadata:   datatypes.JSON(meta),
			CreatedAt:  now,
		})
	}
	if _, err := s.repos.CanonItems.Create(dbc, items); err != nil {
		return YearReport{}, fmt.Errorf("create canon items: %w", err)
	}

	return YearReport{
		Year:    y.Year,
		RunID:   run.ID,
		Changes: len(diffs),
		Papers:  len(y.Papers),
		Videos:  len(y.Videos),
	}, nil
}

// itemConfidence is in [0.9, 1.0).
func (s *Seeder) itemConfidence() float64 {
	var u float64
	if s.Rand != nil {
		u = s.Rand.Float64()
	} else {
		u = rand.Float64()
	}
	return itemConfidence + u*itemJitter
}

func (s *Seeder) progress(msg string) {
	s.log.Info(msg)
	if s.Progress != nil {
		s.Progress(msg)
	}
}
