package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekeeper-backend/internal/domain"
	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:    uuid.New(),
		Email: email,
		Name:  "Test User",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSubject(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string) *types.Subject {
	tb.Helper()
	s := &types.Subject{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        title,
		Discipline:   "CS",
		BaselineYear: 2008,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

func SeedYearRun(tb testing.TB, ctx context.Context, tx *gorm.DB, subjectID uuid.UUID, year int) *types.YearRun {
	tb.Helper()
	now := time.Now().UTC()
	r := &types.YearRun{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		Year:        year,
		Status:      catalog.RunCompleted,
		Summary:     "summary",
		CompletedAt: &now,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed year run: %v", err)
	}
	return r
}

func Ptr(s string) *string { return &s }
