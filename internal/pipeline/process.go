package pipeline

import "github.com/zulandar/semaphore/internal/models"

// ProcessMessage runs the filter then replacement stages. The bool is false
// when the keyword filter suppressed the message; the returned text is only
// meaningful when it is true.
func ProcessMessage(text string, keywords []models.Keyword, replaceRules []models.ReplaceRule) (string, bool) {
	if !ShouldForward(text, keywords) {
		return "", false
	}
	return ApplyReplacements(text, replaceRules), true
}

// Truncate shortens text to at most max runes, appending "..." when it cuts.
// A non-positive max disables truncation.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
