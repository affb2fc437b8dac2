package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/models"
)

// AddKeyword attaches a keyword filter entry to a rule.
func AddKeyword(gdb *gorm.DB, kw *models.Keyword) error {
	if kw.RuleID == 0 {
		return fmt.Errorf("store: keyword rule_id is required")
	}
	if kw.Keyword == "" {
		return fmt.Errorf("store: keyword text is required")
	}
	if err := gdb.Create(kw).Error; err != nil {
		return fmt.Errorf("store: add keyword to rule %d: %w", kw.RuleID, err)
	}
	return nil
}

// DeleteKeyword removes one keyword entry.
func DeleteKeyword(gdb *gorm.DB, id uint) error {
	res := gdb.Delete(&models.Keyword{}, id)
	if res.Error != nil {
		return fmt.Errorf("store: delete keyword %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: delete keyword %d: %w", id, ErrNotFound)
	}
	return nil
}

// KeywordsByRule lists a rule's keyword entries in insertion order.
func KeywordsByRule(gdb *gorm.DB, ruleID uint) ([]models.Keyword, error) {
	var kws []models.Keyword
	if err := gdb.Where("rule_id = ?", ruleID).Order("id").Find(&kws).Error; err != nil {
		return nil, fmt.Errorf("store: keywords for rule %d: %w", ruleID, err)
	}
	return kws, nil
}
