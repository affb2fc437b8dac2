package pipeline

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/zulandar/semaphore/internal/models"
)

// ApplyReplacements folds a rule's active substitutions over the text in
// ascending priority order. Each substitution sees the previous one's
// output. A pattern that fails to compile is logged and skipped.
func ApplyReplacements(text string, rules []models.ReplaceRule) string {
	active := make([]models.ReplaceRule, 0, len(rules))
	for _, rr := range rules {
		if rr.IsActive {
			active = append(active, rr)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})

	for _, rr := range active {
		if rr.IsRegex {
			re, err := regexp.Compile(rr.Pattern)
			if err != nil {
				log.Printf("pipeline: replace rule %q: bad pattern %q: %v", rr.Name, rr.Pattern, err)
				continue
			}
			text = re.ReplaceAllString(text, rr.Replacement)
			continue
		}
		if rr.IsGlobal {
			text = strings.ReplaceAll(text, rr.Pattern, rr.Replacement)
		} else {
			text = strings.Replace(text, rr.Pattern, rr.Replacement, 1)
		}
	}
	return text
}
