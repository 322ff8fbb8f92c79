package repos

import (
	"github.com/yungbote/coursekeeper-backend/internal/data/repos/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = catalog.UserRepo
type SubjectRepo = catalog.SubjectRepo

type BaselineTopicRepo = catalog.BaselineTopicRepo
type YearRunRepo = catalog.YearRunRepo
type YearDiffRepo = catalog.YearDiffRepo
type TimelineEventRepo = catalog.TimelineEventRepo

type CanonItemRepo = catalog.CanonItemRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return catalog.NewUserRepo(db, baseLog)
}
func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return catalog.NewSubjectRepo(db, baseLog)
}

func NewBaselineTopicRepo(db *gorm.DB, baseLog *logger.Logger) BaselineTopicRepo {
	return catalog.NewBaselineTopicRepo(db, baseLog)
}
func NewYearRunRepo(db *gorm.DB, baseLog *logger.Logger) YearRunRepo {
	return catalog.NewYearRunRepo(db, baseLog)
}
func NewYearDiffRepo(db *gorm.DB, baseLog *logger.Logger) YearDiffRepo {
	return catalog.NewYearDiffRepo(db, baseLog)
}
func NewTimelineEventRepo(db *gorm.DB, baseLog *logger.Logger) TimelineEventRepo {
	return catalog.NewTimelineEventRepo(db, baseLog)
}

func NewCanonItemRepo(db *gorm.DB, baseLog *logger.Logger) CanonItemRepo {
	return catalog.NewCanonItemRepo(db, baseLog)
}

// Set bundles every catalog repo over one handle.
type Set struct {
	Users          UserRepo
	Subjects       SubjectRepo
	BaselineTopics BaselineTopicRepo
	YearRuns       YearRunRepo
	YearDiffs      YearDiffRepo
	TimelineEvents TimelineEventRepo
	CanonItems     CanonItemRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Users:          NewUserRepo(db, baseLog),
		Subjects:       NewSubjectRepo(db, baseLog),
		BaselineTopics: NewBaselineTopicRepo(db, baseLog),
		YearRuns:       NewYearRunRepo(db, baseLog),
		YearDiffs:      NewYearDiffRepo(db, baseLog),
		TimelineEvents: NewTimelineEventRepo(db, baseLog),
		CanonItems:     NewCanonItemRepo(db, baseLog),
	}
}
