package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zulandar/semaphore/internal/models"
)

// Setting returns the value for key, or fallback when the key is unset.
func Setting(gdb *gorm.DB, key, fallback string) (string, error) {
	var s models.BotSetting
	err := gdb.Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("store: setting %q: %w", key, err)
	}
	return s.Value, nil
}

// SetSetting upserts a key/value pair.
func SetSetting(gdb *gorm.DB, key, value, description string) error {
	s := models.BotSetting{Key: key, Value: value, Description: description}
	err := gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description"}),
	}).Create(&s).Error
	if err != nil {
		return fmt.Errorf("store: set setting %q: %w", key, err)
	}
	return nil
}

// AllSettings returns every stored setting.
func AllSettings(gdb *gorm.DB) ([]models.BotSetting, error) {
	var settings []models.BotSetting
	if err := gdb.Order("key").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("store: all settings: %w", err)
	}
	return settings, nil
}
