package pipeline

import (
	"testing"

	"github.com/zulandar/semaphore/internal/models"
)

func defaultGateRule() *models.ForwardRule {
	return &models.ForwardRule{
		EnableText:      true,
		EnablePhoto:     true,
		EnableVideo:     true,
		EnableDocument:  true,
		EnableAudio:     true,
		EnableVoice:     true,
		EnableSticker:   false,
		EnableAnimation: true,
		EnableWebpage:   true,
	}
}

func TestAllowsKind_Defaults(t *testing.T) {
	rule := defaultGateRule()

	allowed := []MediaKind{KindText, KindPhoto, KindVideo, KindAudio, KindVoice, KindAnimation, KindDocument, KindWebPage}
	for _, kind := range allowed {
		if !AllowsKind(rule, kind) {
			t.Errorf("kind %s should be allowed by default", kind)
		}
	}
	if AllowsKind(rule, KindSticker) {
		t.Error("stickers should be blocked by default")
	}
}

func TestAllowsKind_StickerOptIn(t *testing.T) {
	rule := defaultGateRule()
	rule.EnableSticker = true
	if !AllowsKind(rule, KindSticker) {
		t.Error("stickers should pass when explicitly enabled")
	}
}

func TestAllowsKind_UnknownAllowed(t *testing.T) {
	rule := defaultGateRule()
	if !AllowsKind(rule, KindOther) {
		t.Error("unknown kinds should be allowed")
	}
}

func TestAllowsKind_GateBlocks(t *testing.T) {
	rule := defaultGateRule()
	rule.EnablePhoto = false
	if AllowsKind(rule, KindPhoto) {
		t.Error("disabled photo gate should block photos")
	}
	if !AllowsKind(rule, KindText) {
		t.Error("text gate is independent of the photo gate")
	}
}

func TestMediaKind_String(t *testing.T) {
	if KindSticker.String() != "sticker" || KindWebPage.String() != "webpage" || KindOther.String() != "other" {
		t.Error("unexpected MediaKind names")
	}
}
