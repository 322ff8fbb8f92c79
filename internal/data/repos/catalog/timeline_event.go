package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type TimelineEventRepo interface {
	Create(dbc dbctx.Context, events []*types.TimelineEvent) ([]*types.TimelineEvent, error)
	DeleteBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) (int64, error)
	ListBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.TimelineEvent, error)
}

type timelineEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimelineEventRepo(db *gorm.DB, baseLog *logger.Logger) TimelineEventRepo {
	repoLog := baseLog.With("repo", "TimelineEventRepo")
	return &timelineEventRepo{db: db, log: repoLog}
}

func (r *timelineEventRepo) Create(dbc dbctx.Context, events []*types.TimelineEvent) ([]*types.TimelineEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(events) == 0 {
		return []*types.TimelineEvent{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *timelineEventRepo) DeleteBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if subjectID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("subject_id = ?", subjectID).
		Delete(&types.TimelineEvent{})
	return res.RowsAffected, res.Error
}

func (r *timelineEventRepo) ListBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.TimelineEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TimelineEvent
	if subjectID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("subject_id = ?", subjectID).
		Order("year ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
