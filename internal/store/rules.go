// Package store provides forwarding-rule, ledger, and settings persistence
// on top of GORM.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// ActiveRulesBySourceChat returns all active rules whose source chat matches
// chatID, with keywords and replace rules preloaded.
func ActiveRulesBySourceChat(gdb *gorm.DB, chatID string) ([]models.ForwardRule, error) {
	var rules []models.ForwardRule
	err := gdb.
		Preload("Keywords").
		Preload("ReplaceRules").
		Where("source_chat_id = ? AND is_active = ?", chatID, true).
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("store: rules for chat %s: %w", chatID, err)
	}
	return rules, nil
}

// AllActiveRules returns every active rule with associations preloaded.
func AllActiveRules(gdb *gorm.DB) ([]models.ForwardRule, error) {
	var rules []models.ForwardRule
	err := gdb.
		Preload("Keywords").
		Preload("ReplaceRules").
		Where("is_active = ?", true).
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("store: active rules: %w", err)
	}
	return rules, nil
}

// AllRules returns every rule, active or not, with associations preloaded.
func AllRules(gdb *gorm.DB) ([]models.ForwardRule, error) {
	var rules []models.ForwardRule
	err := gdb.
		Preload("Keywords").
		Preload("ReplaceRules").
		Order("id").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("store: all rules: %w", err)
	}
	return rules, nil
}

// RuleByID returns one rule with associations preloaded.
func RuleByID(gdb *gorm.DB, id uint) (*models.ForwardRule, error) {
	var rule models.ForwardRule
	err := gdb.
		Preload("Keywords").
		Preload("ReplaceRules").
		First(&rule, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store: rule %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: rule %d: %w", id, err)
	}
	return &rule, nil
}

// DistinctActiveSourceChats returns the deduplicated source chat IDs across
// all active rules. The relay uses this as its monitored-chat set.
func DistinctActiveSourceChats(gdb *gorm.DB) ([]string, error) {
	var chats []string
	err := gdb.Model(&models.ForwardRule{}).
		Where("is_active = ?", true).
		Distinct("source_chat_id").
		Pluck("source_chat_id", &chats).Error
	if err != nil {
		return nil, fmt.Errorf("store: distinct source chats: %w", err)
	}
	return chats, nil
}

// CreateRule inserts a new rule. Callers start from
// models.DefaultForwardRule and set what differs.
func CreateRule(gdb *gorm.DB, rule *models.ForwardRule) error {
	if rule.Name == "" {
		return fmt.Errorf("store: rule name is required")
	}
	if rule.SourceChatID == "" || rule.TargetChatID == "" {
		return fmt.Errorf("store: rule source and target chats are required")
	}
	if err := gdb.Create(rule).Error; err != nil {
		return fmt.Errorf("store: create rule %q: %w", rule.Name, err)
	}
	return nil
}

// UpdateRule applies the given column updates to one rule.
func UpdateRule(gdb *gorm.DB, id uint, updates map[string]interface{}) (*models.ForwardRule, error) {
	result := gdb.Model(&models.ForwardRule{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("store: update rule %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("store: update rule %d: %w", id, ErrNotFound)
	}
	return RuleByID(gdb, id)
}

// DeleteRule removes a rule and, via cascade, its keywords and replace rules.
func DeleteRule(gdb *gorm.DB, id uint) error {
	if err := gdb.Select("Keywords", "ReplaceRules").Delete(&models.ForwardRule{ID: id}).Error; err != nil {
		return fmt.Errorf("store: delete rule %d: %w", id, err)
	}
	return nil
}

// CopyRule duplicates a rule under a new name, including keywords and
// replace rules.
func CopyRule(gdb *gorm.DB, id uint, newName string) (*models.ForwardRule, error) {
	src, err := RuleByID(gdb, id)
	if err != nil {
		return nil, err
	}
	if newName == "" {
		newName = src.Name + " (copy)"
	}

	dup := *src
	dup.ID = 0
	dup.Name = newName
	dup.Keywords = make([]models.Keyword, len(src.Keywords))
	for i, kw := range src.Keywords {
		kw.ID = 0
		kw.RuleID = 0
		dup.Keywords[i] = kw
	}
	dup.ReplaceRules = make([]models.ReplaceRule, len(src.ReplaceRules))
	for i, rr := range src.ReplaceRules {
		rr.ID = 0
		rr.RuleID = 0
		dup.ReplaceRules[i] = rr
	}

	if err := gdb.Create(&dup).Error; err != nil {
		return nil, fmt.Errorf("store: copy rule %d: %w", id, err)
	}
	return &dup, nil
}

// UpdateChatNames refreshes the display names on any rule referencing the
// given chat ID. Returns the number of rules touched.
func UpdateChatNames(gdb *gorm.DB, chatID, name string) (int64, error) {
	var total int64
	res := gdb.Model(&models.ForwardRule{}).
		Where("source_chat_id = ?", chatID).
		Update("source_chat_name", name)
	if res.Error != nil {
		return 0, fmt.Errorf("store: update source chat names: %w", res.Error)
	}
	total += res.RowsAffected

	res = gdb.Model(&models.ForwardRule{}).
		Where("target_chat_id = ?", chatID).
		Update("target_chat_name", name)
	if res.Error != nil {
		return total, fmt.Errorf("store: update target chat names: %w", res.Error)
	}
	total += res.RowsAffected
	return total, nil
}
