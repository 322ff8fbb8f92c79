package catalog

import (
	"strings"

	"gorm.io/gorm"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type CanonItemRepo interface {
	Create(dbc dbctx.Context, items []*types.CanonItem) ([]*types.CanonItem, error)
	DeleteByDisciplineYears(dbc dbctx.Context, discipline string, years []int) (int64, error)
	ListByDisciplineYear(dbc dbctx.Context, discipline string, year int) ([]*types.CanonItem, error)
}

type canonItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCanonItemRepo(db *gorm.DB, baseLog *logger.Logger) CanonItemRepo {
	repoLog := baseLog.With("repo", "CanonItemRepo")
	return &canonItemRepo{db: db, log: repoLog}
}

func (r *canonItemRepo) Create(dbc dbctx.Context, items []*types.CanonItem) ([]*types.CanonItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return []*types.CanonItem{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *canonItemRepo) DeleteByDisciplineYears(dbc dbctx.Context, discipline string, years []int) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if strings.TrimSpace(discipline) == "" || len(years) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("discipline = ? AND year IN ?", discipline, years).
		Delete(&types.CanonItem{})
	return res.RowsAffected, res.Error
}

// ListByDisciplineYear orders items by type, then by their position within the type.
func (r *canonItemRepo) ListByDisciplineYear(dbc dbctx.Context, discipline string, year int) ([]*types.CanonItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CanonItem
	if strings.TrimSpace(discipline) == "" {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("discipline = ? AND year = ?", discipline, year).
		Order("type ASC, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
