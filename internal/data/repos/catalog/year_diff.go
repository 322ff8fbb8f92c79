package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type YearDiffRepo interface {
	Create(dbc dbctx.Context, diffs []*types.YearDiff) ([]*types.YearDiff, error)
	DeleteBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) (int64, error)
	ListByRunIDs(dbc dbctx.Context, runIDs []uuid.UUID) ([]*types.YearDiff, error)
}

type yearDiffRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewYearDiffRepo(db *gorm.DB, baseLog *logger.Logger) YearDiffRepo {
	repoLog := baseLog.With("repo", "YearDiffRepo")
	return &yearDiffRepo{db: db, log: repoLog}
}

// Create validates every diff through the model hook; one invalid diff fails the batch.
func (r *yearDiffRepo) Create(dbc dbctx.Context, diffs []*types.YearDiff) ([]*types.YearDiff, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(diffs) == 0 {
		return []*types.YearDiff{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&diffs).Error; err != nil {
		return nil, err
	}
	return diffs, nil
}

// DeleteBySubjectID removes the diffs of every run belonging to the subject. Call it before
// deleting the runs themselves.
func (r *yearDiffRepo) DeleteBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if subjectID == uuid.Nil {
		return 0, nil
	}
	runIDs := transaction.WithContext(dbc.Ctx).
		Model(&types.YearRun{}).
		Select("id").
		Where("subject_id = ?", subjectID)
	res := transaction.WithContext(dbc.Ctx).
		Where("run_id IN (?)", runIDs).
		Delete(&types.YearDiff{})
	return res.RowsAffected, res.Error
}

func (r *yearDiffRepo) ListByRunIDs(dbc dbctx.Context, runIDs []uuid.UUID) ([]*types.YearDiff, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.YearDiff
	if len(runIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("run_id IN ?", runIDs).
		Order("run_id ASC, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
