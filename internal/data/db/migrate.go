package db

import (
	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(catalog.All()...)
}

func (s *Store) AutoMigrate() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return err
	}
	s.log.Info("Catalog schema migrated")
	return nil
}
