package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	pkgerrors "github.com/yungbote/coursekeeper-backend/internal/pkg/errors"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type SubjectRepo interface {
	FindOrCreate(dbc dbctx.Context, subject *types.Subject) (*types.Subject, bool, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Subject, error)
	GetByTitle(dbc dbctx.Context, title string) ([]*types.Subject, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Subject, error)
	List(dbc dbctx.Context, limit int) ([]*types.Subject, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	repoLog := baseLog.With("repo", "SubjectRepo")
	return &subjectRepo{db: db, log: repoLog}
}

// FindOrCreate matches on (user_id, title). The bool reports whether a row was inserted.
func (r *subjectRepo) FindOrCreate(dbc dbctx.Context, subject *types.Subject) (*types.Subject, bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if subject == nil || subject.UserID == uuid.Nil || strings.TrimSpace(subject.Title) == "" {
		return nil, false, fmt.Errorf("%w: subject user and title required", pkgerrors.ErrInvalidArgument)
	}

	var existing types.Subject
	err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND title = ?", subject.UserID, subject.Title).
		Order("created_at ASC").
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := transaction.WithContext(dbc.Ctx).Create(subject).Error; err != nil {
		return nil, false, err
	}
	r.log.Debug("Subject created", "subject_id", subject.ID, "title", subject.Title)
	return subject, true, nil
}

func (r *subjectRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByTitle matches case-insensitively, oldest first.
func (r *subjectRepo) GetByTitle(dbc dbctx.Context, title string) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	title = strings.TrimSpace(title)
	if title == "" {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("LOWER(title) = ?", strings.ToLower(title)).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// List returns subjects oldest first. limit <= 0 means no limit.
func (r *subjectRepo) List(dbc dbctx.Context, limit int) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Subject
	q := transaction.WithContext(dbc.Ctx).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
