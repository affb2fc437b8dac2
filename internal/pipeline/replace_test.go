package pipeline

import (
	"testing"

	"github.com/zulandar/semaphore/internal/models"
)

func rr(pattern, replacement string, priority int, active bool) models.ReplaceRule {
	return models.ReplaceRule{
		Pattern:     pattern,
		Replacement: replacement,
		Priority:    priority,
		IsRegex:     true,
		IsActive:    active,
		IsGlobal:    true,
	}
}

func TestApplyReplacements_PriorityOrderChains(t *testing.T) {
	// Lower priority runs first; the second rule sees the first one's output.
	rules := []models.ReplaceRule{
		rr("bbb", "ccc", 2, true),
		rr("aaa", "bbb", 1, true),
	}
	got := ApplyReplacements("aaa", rules)
	if got != "ccc" {
		t.Errorf("ApplyReplacements = %q, want %q", got, "ccc")
	}
}

func TestApplyReplacements_InactiveSkipped(t *testing.T) {
	rules := []models.ReplaceRule{
		rr("hello", "goodbye", 1, false),
	}
	got := ApplyReplacements("hello world", rules)
	if got != "hello world" {
		t.Errorf("inactive rule applied: %q", got)
	}
}

func TestApplyReplacements_BadPatternSkipped(t *testing.T) {
	rules := []models.ReplaceRule{
		rr("([", "X", 1, true),
		rr("world", "there", 2, true),
	}
	got := ApplyReplacements("hello world", rules)
	if got != "hello there" {
		t.Errorf("ApplyReplacements = %q, want %q", got, "hello there")
	}
}

func TestApplyReplacements_CaptureGroups(t *testing.T) {
	rules := []models.ReplaceRule{
		rr(`price: (\d+)`, "cost: $1", 1, true),
	}
	got := ApplyReplacements("price: 42", rules)
	if got != "cost: 42" {
		t.Errorf("ApplyReplacements = %q, want %q", got, "cost: 42")
	}
}

func TestApplyReplacements_PlainText(t *testing.T) {
	plain := models.ReplaceRule{
		Pattern:     "a.c",
		Replacement: "x",
		IsRegex:     false,
		IsActive:    true,
		IsGlobal:    true,
	}
	got := ApplyReplacements("a.c abc a.c", []models.ReplaceRule{plain})
	if got != "x abc x" {
		t.Errorf("plain replacement = %q, want %q", got, "x abc x")
	}

	plain.IsGlobal = false
	got = ApplyReplacements("a.c abc a.c", []models.ReplaceRule{plain})
	if got != "x abc a.c" {
		t.Errorf("non-global plain replacement = %q, want %q", got, "x abc a.c")
	}
}
