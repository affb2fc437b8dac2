package pipeline

import (
	"testing"
	"time"

	"github.com/zulandar/semaphore/internal/models"
)

func TestInTimeWindow_OnlyRangeRestricts(t *testing.T) {
	now := time.Now()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	for _, mode := range []string{
		models.TimeFilterAfterStart,
		models.TimeFilterFromTime,
		models.TimeFilterTodayOnly,
		models.TimeFilterAllMessages,
	} {
		rule := &models.ForwardRule{TimeFilterType: mode, StartTime: &future}
		if !InTimeWindow(rule, now) {
			t.Errorf("mode %s should not restrict live messages", mode)
		}
	}

	rule := &models.ForwardRule{TimeFilterType: models.TimeFilterRange, StartTime: &past, EndTime: &future}
	if !InTimeWindow(rule, now) {
		t.Error("message inside range should pass")
	}
	if InTimeWindow(rule, past.Add(-time.Hour)) {
		t.Error("message before range should be blocked")
	}
	if InTimeWindow(rule, future.Add(time.Hour)) {
		t.Error("message after range should be blocked")
	}
}

func TestReplayWindow_TodayOnly(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 30, 0, 0, time.Local)
	rule := &models.ForwardRule{TimeFilterType: models.TimeFilterTodayOnly}
	start, end := ReplayWindow(rule, now)
	wantStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want local midnight %v", start, wantStart)
	}
	if !end.Equal(now) {
		t.Errorf("end = %v, want now", end)
	}
}

func TestReplayWindow_FromTime(t *testing.T) {
	now := time.Now()
	from := now.Add(-72 * time.Hour)
	rule := &models.ForwardRule{TimeFilterType: models.TimeFilterFromTime, StartTime: &from}
	start, end := ReplayWindow(rule, now)
	if !start.Equal(from) || !end.Equal(now) {
		t.Errorf("window = [%v, %v], want [%v, %v]", start, end, from, now)
	}
}

func TestReplayWindow_Range(t *testing.T) {
	now := time.Now()
	from := now.Add(-48 * time.Hour)
	to := now.Add(-24 * time.Hour)
	rule := &models.ForwardRule{TimeFilterType: models.TimeFilterRange, StartTime: &from, EndTime: &to}
	start, end := ReplayWindow(rule, now)
	if !start.Equal(from) || !end.Equal(to) {
		t.Errorf("window = [%v, %v], want stored bounds", start, end)
	}
}

func TestReplayWindow_DefaultLookback(t *testing.T) {
	now := time.Now()
	for _, mode := range []string{models.TimeFilterAllMessages, models.TimeFilterAfterStart, ""} {
		rule := &models.ForwardRule{TimeFilterType: mode}
		start, end := ReplayWindow(rule, now)
		if !start.Equal(now.Add(-24*time.Hour)) || !end.Equal(now) {
			t.Errorf("mode %q window = [%v, %v], want 24h lookback", mode, start, end)
		}
	}
}
