package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/semaphore/internal/models"
)

// LogFilters holds optional filters for listing message logs.
type LogFilters struct {
	RuleName string
	Status   string
	// Page is 1-based; Page <= 0 means page 1. PerPage <= 0 means 50.
	Page    int
	PerPage int
}

// Append records one forwarding attempt.
func Append(gdb *gorm.DB, entry *models.MessageLog) error {
	if err := gdb.Create(entry).Error; err != nil {
		return fmt.Errorf("store: append log for rule %q: %w", entry.RuleName, err)
	}
	return nil
}

// WasForwarded reports whether a successful forward is already recorded for
// this (message, chat, rule name) tuple. Only success entries count, so a
// failed attempt is retried on replay.
func WasForwarded(gdb *gorm.DB, sourceMsgID int64, sourceChatID, ruleName string) (bool, error) {
	var count int64
	err := gdb.Model(&models.MessageLog{}).
		Where("source_message_id = ? AND source_chat_id = ? AND rule_name = ? AND status = ?",
			sourceMsgID, sourceChatID, ruleName, models.StatusSuccess).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("store: dedup lookup for rule %q: %w", ruleName, err)
	}
	return count > 0, nil
}

// Logs returns a filtered, paginated page of log entries, newest first,
// plus the total row count for the filter.
func Logs(gdb *gorm.DB, f LogFilters) ([]models.MessageLog, int64, error) {
	q := gdb.Model(&models.MessageLog{})
	if f.RuleName != "" {
		q = q.Where("rule_name = ?", f.RuleName)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("store: count logs: %w", err)
	}

	page := f.Page
	if page <= 0 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 50
	}

	var logs []models.MessageLog
	err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("store: list logs: %w", err)
	}
	return logs, total, nil
}

// LogsByRule returns all entries for one rule name, newest first.
func LogsByRule(gdb *gorm.DB, ruleName string) ([]models.MessageLog, error) {
	var logs []models.MessageLog
	err := gdb.Where("rule_name = ?", ruleName).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("store: logs for rule %q: %w", ruleName, err)
	}
	return logs, nil
}

// DeleteLogs removes the given entries by ID. Returns the number deleted.
func DeleteLogs(gdb *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := gdb.Delete(&models.MessageLog{}, ids)
	if res.Error != nil {
		return 0, fmt.Errorf("store: batch delete logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ClearLogs removes every log entry. Returns the number deleted.
func ClearLogs(gdb *gorm.DB) (int64, error) {
	res := gdb.Where("1 = 1").Delete(&models.MessageLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: clear logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteLogsOlderThan removes entries older than the retention window.
// Returns the number deleted.
func DeleteLogsOlderThan(gdb *gorm.DB, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	res := gdb.Where("created_at < ?", cutoff).Delete(&models.MessageLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: delete logs older than %d days: %w", days, res.Error)
	}
	return res.RowsAffected, nil
}
