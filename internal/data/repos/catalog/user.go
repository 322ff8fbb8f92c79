package catalog

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	pkgerrors "github.com/yungbote/coursekeeper-backend/internal/pkg/errors"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

type UserRepo interface {
	UpsertByEmail(dbc dbctx.Context, user *types.User) (*types.User, error)
	GetByEmails(dbc dbctx.Context, emails []string) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

// UpsertByEmail inserts the user unless the email is taken and returns the stored row. An
// existing row is never updated.
func (r *userRepo) UpsertByEmail(dbc dbctx.Context, user *types.User) (*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return nil, fmt.Errorf("%w: user email required", pkgerrors.ErrInvalidArgument)
	}

	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(user).Error; err != nil {
		return nil, err
	}

	var stored types.User
	if err := transaction.WithContext(dbc.Ctx).
		Where("email = ?", user.Email).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *userRepo) GetByEmails(dbc dbctx.Context, emails []string) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.User
	if len(emails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
