package pipeline

import "github.com/zulandar/semaphore/internal/models"

// MediaKind classifies an inbound message's content for the per-rule
// type gates.
type MediaKind int

const (
	KindText MediaKind = iota
	KindPhoto
	KindVideo
	KindAudio
	KindVoice
	KindSticker
	KindAnimation
	KindDocument
	KindWebPage
	KindOther
)

// String returns the lowercase name used in logs and API responses.
func (k MediaKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindVoice:
		return "voice"
	case KindSticker:
		return "sticker"
	case KindAnimation:
		return "animation"
	case KindDocument:
		return "document"
	case KindWebPage:
		return "webpage"
	default:
		return "other"
	}
}

// AllowsKind reports whether a rule's content-type gates admit the given
// kind. Kinds with no dedicated gate are admitted.
func AllowsKind(rule *models.ForwardRule, kind MediaKind) bool {
	switch kind {
	case KindText:
		return rule.EnableText
	case KindPhoto:
		return rule.EnablePhoto
	case KindVideo:
		return rule.EnableVideo
	case KindAudio:
		return rule.EnableAudio
	case KindVoice:
		return rule.EnableVoice
	case KindSticker:
		return rule.EnableSticker
	case KindAnimation:
		return rule.EnableAnimation
	case KindDocument:
		return rule.EnableDocument
	case KindWebPage:
		return rule.EnableWebpage
	default:
		return true
	}
}
