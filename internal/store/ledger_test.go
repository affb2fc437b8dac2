package store

import (
	"testing"
	"time"

	"github.com/zulandar/semaphore/internal/models"
)

func TestWasForwarded_SuccessOnly(t *testing.T) {
	gdb := openTestDB(t)

	failed := models.MessageLog{
		RuleName:        "news",
		SourceMessageID: 10,
		SourceChatID:    "-100",
		Status:          models.StatusFailed,
	}
	if err := Append(gdb, &failed); err != nil {
		t.Fatalf("Append: %v", err)
	}

	seen, err := WasForwarded(gdb, 10, "-100", "news")
	if err != nil {
		t.Fatalf("WasForwarded: %v", err)
	}
	if seen {
		t.Error("failed attempt must not count as forwarded")
	}

	success := failed
	success.ID = 0
	success.Status = models.StatusSuccess
	if err := Append(gdb, &success); err != nil {
		t.Fatalf("Append: %v", err)
	}

	seen, err = WasForwarded(gdb, 10, "-100", "news")
	if err != nil {
		t.Fatalf("WasForwarded: %v", err)
	}
	if !seen {
		t.Error("successful forward should be recorded")
	}
}

func TestWasForwarded_KeyedPerRule(t *testing.T) {
	gdb := openTestDB(t)
	entry := models.MessageLog{
		RuleName:        "alpha",
		SourceMessageID: 7,
		SourceChatID:    "-100",
		Status:          models.StatusSuccess,
	}
	if err := Append(gdb, &entry); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if seen, _ := WasForwarded(gdb, 7, "-100", "beta"); seen {
		t.Error("another rule's forward must not satisfy dedup")
	}
	if seen, _ := WasForwarded(gdb, 7, "-200", "alpha"); seen {
		t.Error("another chat's forward must not satisfy dedup")
	}
	if seen, _ := WasForwarded(gdb, 8, "-100", "alpha"); seen {
		t.Error("another message must not satisfy dedup")
	}
}

func TestLogs_FilterAndPaginate(t *testing.T) {
	gdb := openTestDB(t)
	for i := 0; i < 7; i++ {
		status := models.StatusSuccess
		if i%2 == 1 {
			status = models.StatusFailed
		}
		entry := models.MessageLog{
			RuleName:        "news",
			SourceMessageID: int64(i),
			SourceChatID:    "-100",
			Status:          status,
		}
		if err := Append(gdb, &entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	logs, total, err := Logs(gdb, LogFilters{Status: models.StatusSuccess})
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if total != 4 || len(logs) != 4 {
		t.Errorf("success logs = %d (total %d), want 4", len(logs), total)
	}

	logs, total, err = Logs(gdb, LogFilters{Page: 2, PerPage: 3})
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(logs) != 3 {
		t.Errorf("page 2 size = %d, want 3", len(logs))
	}
}

func TestDeleteLogsAndClear(t *testing.T) {
	gdb := openTestDB(t)
	var ids []uint
	for i := 0; i < 3; i++ {
		entry := models.MessageLog{RuleName: "r", SourceMessageID: int64(i), SourceChatID: "-1", Status: models.StatusSuccess}
		if err := Append(gdb, &entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
		ids = append(ids, entry.ID)
	}

	n, err := DeleteLogs(gdb, ids[:2])
	if err != nil {
		t.Fatalf("DeleteLogs: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	n, err = ClearLogs(gdb)
	if err != nil {
		t.Fatalf("ClearLogs: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared = %d, want 1", n)
	}
}

func TestDeleteLogsOlderThan(t *testing.T) {
	gdb := openTestDB(t)
	old := models.MessageLog{RuleName: "r", SourceMessageID: 1, SourceChatID: "-1", Status: models.StatusSuccess}
	if err := Append(gdb, &old); err != nil {
		t.Fatalf("Append: %v", err)
	}
	gdb.Model(&old).Update("created_at", time.Now().AddDate(0, 0, -45))

	fresh := models.MessageLog{RuleName: "r", SourceMessageID: 2, SourceChatID: "-1", Status: models.StatusSuccess}
	if err := Append(gdb, &fresh); err != nil {
		t.Fatalf("Append: %v", err)
	}

	n, err := DeleteLogsOlderThan(gdb, 30)
	if err != nil {
		t.Fatalf("DeleteLogsOlderThan: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want only the 45-day-old entry", n)
	}
}
