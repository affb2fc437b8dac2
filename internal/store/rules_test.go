package store

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/semaphore/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.ForwardRule{},
		&models.Keyword{},
		&models.ReplaceRule{},
		&models.MessageLog{},
		&models.ClientAccount{},
		&models.BotSetting{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return gdb
}

func seedRule(t *testing.T, gdb *gorm.DB, name, source string, active bool) *models.ForwardRule {
	t.Helper()
	rule := &models.ForwardRule{
		Name:         name,
		SourceChatID: source,
		TargetChatID: "-1000000000099",
		IsActive:     active,
		Keywords: []models.Keyword{
			{Keyword: "go"},
		},
		ReplaceRules: []models.ReplaceRule{
			{Pattern: "foo", Replacement: "bar", IsRegex: true, IsActive: true},
		},
	}
	if err := CreateRule(gdb, rule); err != nil {
		t.Fatalf("seed rule %s: %v", name, err)
	}
	return rule
}

func TestActiveRulesBySourceChat_PreloadsAssociations(t *testing.T) {
	gdb := openTestDB(t)
	seedRule(t, gdb, "one", "-1000000000001", true)
	seedRule(t, gdb, "two", "-1000000000001", false)
	seedRule(t, gdb, "three", "-1000000000002", true)

	rules, err := ActiveRulesBySourceChat(gdb, "-1000000000001")
	if err != nil {
		t.Fatalf("ActiveRulesBySourceChat: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("rules = %d, want 1 (inactive and other-chat excluded)", len(rules))
	}
	if len(rules[0].Keywords) != 1 || len(rules[0].ReplaceRules) != 1 {
		t.Error("keywords and replace rules should be preloaded")
	}
}

func TestDistinctActiveSourceChats(t *testing.T) {
	gdb := openTestDB(t)
	seedRule(t, gdb, "one", "-1000000000001", true)
	seedRule(t, gdb, "two", "-1000000000001", true)
	seedRule(t, gdb, "three", "-1000000000002", true)
	seedRule(t, gdb, "four", "-1000000000003", false)

	chats, err := DistinctActiveSourceChats(gdb)
	if err != nil {
		t.Fatalf("DistinctActiveSourceChats: %v", err)
	}
	if len(chats) != 2 {
		t.Errorf("chats = %v, want 2 distinct active sources", chats)
	}
}

func TestRuleByID_NotFound(t *testing.T) {
	gdb := openTestDB(t)
	if _, err := RuleByID(gdb, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateRule_Validation(t *testing.T) {
	gdb := openTestDB(t)
	if err := CreateRule(gdb, &models.ForwardRule{SourceChatID: "1", TargetChatID: "2"}); err == nil {
		t.Error("missing name should fail")
	}
	if err := CreateRule(gdb, &models.ForwardRule{Name: "x"}); err == nil {
		t.Error("missing chats should fail")
	}
}

func TestUpdateRule(t *testing.T) {
	gdb := openTestDB(t)
	rule := seedRule(t, gdb, "one", "-100", true)

	updated, err := UpdateRule(gdb, rule.ID, map[string]interface{}{"is_active": false, "forward_delay": 5})
	if err != nil {
		t.Fatalf("UpdateRule: %v", err)
	}
	if updated.IsActive || updated.ForwardDelay != 5 {
		t.Errorf("update not applied: active=%v delay=%d", updated.IsActive, updated.ForwardDelay)
	}

	if _, err := UpdateRule(gdb, 999, map[string]interface{}{"is_active": false}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRule_CascadesAssociations(t *testing.T) {
	gdb := openTestDB(t)
	rule := seedRule(t, gdb, "one", "-100", true)

	if err := DeleteRule(gdb, rule.ID); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	var count int64
	gdb.Model(&models.Keyword{}).Where("rule_id = ?", rule.ID).Count(&count)
	if count != 0 {
		t.Errorf("keywords remaining = %d, want 0", count)
	}
	gdb.Model(&models.ReplaceRule{}).Where("rule_id = ?", rule.ID).Count(&count)
	if count != 0 {
		t.Errorf("replace rules remaining = %d, want 0", count)
	}
}

func TestCopyRule(t *testing.T) {
	gdb := openTestDB(t)
	rule := seedRule(t, gdb, "one", "-100", true)

	dup, err := CopyRule(gdb, rule.ID, "")
	if err != nil {
		t.Fatalf("CopyRule: %v", err)
	}
	if dup.ID == rule.ID {
		t.Error("copy should get a new ID")
	}
	if dup.Name != "one (copy)" {
		t.Errorf("copy name = %q, want default suffix", dup.Name)
	}
	if len(dup.Keywords) != 1 || len(dup.ReplaceRules) != 1 {
		t.Error("copy should duplicate keywords and replace rules")
	}
	if dup.Keywords[0].ID == rule.Keywords[0].ID {
		t.Error("copied keyword should be a new row")
	}
}

func TestUpdateChatNames(t *testing.T) {
	gdb := openTestDB(t)
	seedRule(t, gdb, "one", "-100", true)
	seedRule(t, gdb, "two", "-100", true)

	n, err := UpdateChatNames(gdb, "-100", "Announcements")
	if err != nil {
		t.Fatalf("UpdateChatNames: %v", err)
	}
	if n != 2 {
		t.Errorf("updated = %d, want 2", n)
	}
	rules, _ := AllRules(gdb)
	for _, r := range rules {
		if r.SourceChatName != "Announcements" {
			t.Errorf("rule %s source name = %q", r.Name, r.SourceChatName)
		}
	}
}
