package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type BaselineTopicRepo interface {
	Create(dbc dbctx.Context, topics []*types.BaselineTopic) ([]*types.BaselineTopic, error)
	DeleteBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) (int64, error)
	ListBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.BaselineTopic, error)
}

type baselineTopicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBaselineTopicRepo(db *gorm.DB, baseLog *logger.Logger) BaselineTopicRepo {
	repoLog := baseLog.With("repo", "BaselineTopicRepo")
	return &baselineTopicRepo{db: db, log: repoLog}
}

func (r *baselineTopicRepo) Create(dbc dbctx.Context, topics []*types.BaselineTopic) ([]*types.BaselineTopic, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(topics) == 0 {
		return []*types.BaselineTopic{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *baselineTopicRepo) DeleteBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if subjectID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("subject_id = ?", subjectID).
		Delete(&types.BaselineTopic{})
	return res.RowsAffected, res.Error
}

// ListBySubjectID returns the most important topics first.
func (r *baselineTopicRepo) ListBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.BaselineTopic, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.BaselineTopic
	if subjectID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("subject_id = ?", subjectID).
		Order("importance DESC, name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
