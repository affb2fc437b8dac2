package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/models"
)

// AddReplaceRule attaches a regex substitution to a rule.
func AddReplaceRule(gdb *gorm.DB, rr *models.ReplaceRule) error {
	if rr.RuleID == 0 {
		return fmt.Errorf("store: replace rule rule_id is required")
	}
	if rr.Pattern == "" {
		return fmt.Errorf("store: replace rule pattern is required")
	}
	if err := gdb.Create(rr).Error; err != nil {
		return fmt.Errorf("store: add replace rule to rule %d: %w", rr.RuleID, err)
	}
	return nil
}

// DeleteReplaceRule removes one substitution entry.
func DeleteReplaceRule(gdb *gorm.DB, id uint) error {
	res := gdb.Delete(&models.ReplaceRule{}, id)
	if res.Error != nil {
		return fmt.Errorf("store: delete replace rule %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: delete replace rule %d: %w", id, ErrNotFound)
	}
	return nil
}

// ReplaceRulesByRule lists a rule's substitutions ordered by priority.
func ReplaceRulesByRule(gdb *gorm.DB, ruleID uint) ([]models.ReplaceRule, error) {
	var rrs []models.ReplaceRule
	if err := gdb.Where("rule_id = ?", ruleID).Order("priority, id").Find(&rrs).Error; err != nil {
		return nil, fmt.Errorf("store: replace rules for rule %d: %w", ruleID, err)
	}
	return rrs, nil
}
