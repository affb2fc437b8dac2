package pipeline

import (
	"time"

	"github.com/zulandar/semaphore/internal/models"
)

// InTimeWindow is the live-path time gate. Only the time_range mode
// restricts live messages; every other mode passes them through.
func InTimeWindow(rule *models.ForwardRule, at time.Time) bool {
	if rule.TimeFilterType != models.TimeFilterRange {
		return true
	}
	if rule.StartTime != nil && at.Before(*rule.StartTime) {
		return false
	}
	if rule.EndTime != nil && at.After(*rule.EndTime) {
		return false
	}
	return true
}

// ReplayWindow resolves a rule's time-filter mode into the concrete
// [start, end] window a historical replay should fetch.
//
// today_only covers local midnight to now, from_time covers the rule's
// start time to now, time_range uses the stored bounds, and every other
// mode falls back to a 24-hour lookback.
func ReplayWindow(rule *models.ForwardRule, now time.Time) (time.Time, time.Time) {
	switch rule.TimeFilterType {
	case models.TimeFilterTodayOnly:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return midnight, now
	case models.TimeFilterFromTime:
		if rule.StartTime != nil {
			return *rule.StartTime, now
		}
	case models.TimeFilterRange:
		if rule.StartTime != nil {
			end := now
			if rule.EndTime != nil {
				end = *rule.EndTime
			}
			return *rule.StartTime, end
		}
	}
	return now.Add(-24 * time.Hour), now
}
