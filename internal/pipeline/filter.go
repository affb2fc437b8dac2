// Package pipeline implements the per-message transformation chain:
// keyword filtering, regex replacement, content-type and time gating,
// and length truncation.
package pipeline

import (
	"regexp"
	"strings"

	"github.com/zulandar/semaphore/internal/models"
)

// ShouldForward decides whether a message passes a rule's keyword filter.
//
// Empty text or an empty keyword set always forwards. Exclusion keywords are
// checked first and any match vetoes the message. With no inclusion keywords
// the message forwards; otherwise at least one inclusion keyword must match.
func ShouldForward(text string, keywords []models.Keyword) bool {
	if text == "" || len(keywords) == 0 {
		return true
	}

	var includes []models.Keyword
	for _, kw := range keywords {
		if kw.IsExclude {
			if matchKeyword(text, kw) {
				return false
			}
			continue
		}
		includes = append(includes, kw)
	}

	if len(includes) == 0 {
		return true
	}
	for _, kw := range includes {
		if matchKeyword(text, kw) {
			return true
		}
	}
	return false
}

// matchKeyword tests one keyword against the text. A regex keyword that
// fails to compile never matches.
func matchKeyword(text string, kw models.Keyword) bool {
	if kw.IsRegex {
		pattern := kw.Keyword
		if !kw.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}
	if kw.CaseSensitive {
		return strings.Contains(text, kw.Keyword)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(kw.Keyword))
}
