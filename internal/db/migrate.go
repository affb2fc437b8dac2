package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/models"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.ForwardRule{},
		&models.Keyword{},
		&models.ReplaceRule{},
		&models.MessageLog{},
		&models.ClientAccount{},
		&models.BotSetting{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
