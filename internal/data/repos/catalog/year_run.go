package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type YearRunRepo interface {
	Create(dbc dbctx.Context, runs []*types.YearRun) ([]*types.YearRun, error)
	DeleteBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) (int64, error)
	GetBySubjectAndYear(dbc dbctx.Context, subjectID uuid.UUID, year int) (*types.YearRun, error)
	ListBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.YearRun, error)
}

type yearRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewYearRunRepo(db *gorm.DB, baseLog *logger.Logger) YearRunRepo {
	repoLog := baseLog.With("repo", "YearRunRepo")
	return &yearRunRepo{db: db, log: repoLog}
}

func (r *yearRunRepo) Create(dbc dbctx.Context, runs []*types.YearRun) ([]*types.YearRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(runs) == 0 {
		return []*types.YearRun{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *yearRunRepo) DeleteBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if subjectID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("subject_id = ?", subjectID).
		Delete(&types.YearRun{})
	return res.RowsAffected, res.Error
}

// GetBySubjectAndYear returns nil without error when no run exists. If several runs share a
// year the most recent one wins.
func (r *yearRunRepo) GetBySubjectAndYear(dbc dbctx.Context, subjectID uuid.UUID, year int) (*types.YearRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if subjectID == uuid.Nil {
		return nil, nil
	}

	var run types.YearRun
	err := transaction.WithContext(dbc.Ctx).
		Where("subject_id = ? AND year = ?", subjectID, year).
		Order("created_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *yearRunRepo) ListBySubjectID(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.YearRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.YearRun
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
