package pipeline

import (
	"testing"

	"github.com/zulandar/semaphore/internal/models"
)

func kw(text string, regex, exclude, caseSensitive bool) models.Keyword {
	return models.Keyword{Keyword: text, IsRegex: regex, IsExclude: exclude, CaseSensitive: caseSensitive}
}

func TestShouldForward_EmptyTextAndKeywords(t *testing.T) {
	if !ShouldForward("", []models.Keyword{kw("sale", false, false, false)}) {
		t.Error("empty text should forward")
	}
	if !ShouldForward("anything", nil) {
		t.Error("empty keyword set should forward")
	}
	if !ShouldForward("", nil) {
		t.Error("both empty should forward")
	}
}

func TestShouldForward_ExcludeWinsOverInclude(t *testing.T) {
	keywords := []models.Keyword{
		kw("offer", false, false, false),
		kw("spam", false, true, false),
	}
	if ShouldForward("limited offer, no spam intended", keywords) {
		t.Error("exclusion match must veto even with a matching include")
	}
	if !ShouldForward("limited offer today", keywords) {
		t.Error("include match without exclusion should forward")
	}
}

func TestShouldForward_OnlyExcludes(t *testing.T) {
	keywords := []models.Keyword{kw("spam", false, true, false)}
	if !ShouldForward("a clean message", keywords) {
		t.Error("no includes and no exclusion match should forward")
	}
	if ShouldForward("pure spam here", keywords) {
		t.Error("exclusion match should suppress")
	}
}

func TestShouldForward_IncludeRequired(t *testing.T) {
	keywords := []models.Keyword{
		kw("btc", false, false, false),
		kw("eth", false, false, false),
	}
	if !ShouldForward("ETH is moving", keywords) {
		t.Error("case-insensitive include should match")
	}
	if ShouldForward("nothing relevant", keywords) {
		t.Error("no include match should suppress")
	}
}

func TestShouldForward_CaseSensitive(t *testing.T) {
	keywords := []models.Keyword{kw("BTC", false, false, true)}
	if ShouldForward("btc is lowercase", keywords) {
		t.Error("case-sensitive include should not match different case")
	}
	if !ShouldForward("BTC exactly", keywords) {
		t.Error("case-sensitive include should match same case")
	}
}

func TestShouldForward_RegexKeyword(t *testing.T) {
	keywords := []models.Keyword{kw(`\bv\d+\.\d+\b`, true, false, false)}
	if !ShouldForward("released v1.2 today", keywords) {
		t.Error("regex include should match")
	}
	if ShouldForward("no version here", keywords) {
		t.Error("regex include should not match")
	}
}

func TestShouldForward_BadRegexNeverMatches(t *testing.T) {
	include := []models.Keyword{kw(`([`, true, false, false)}
	if ShouldForward("anything", include) {
		t.Error("bad regex include should behave as non-match and suppress")
	}

	exclude := []models.Keyword{kw(`([`, true, true, false)}
	if !ShouldForward("anything", exclude) {
		t.Error("bad regex exclude should behave as non-match and forward")
	}
}
