package mtproto

import (
	"github.com/gotd/td/tg"

	"github.com/zulandar/semaphore/internal/pipeline"
)

// classify maps a message's media payload to the pipeline's MediaKind.
// Documents carry their real type in attributes: stickers, animations,
// video, voice notes, and music all arrive as tg.MessageMediaDocument.
func classify(msg *tg.Message) pipeline.MediaKind {
	media, ok := msg.GetMedia()
	if !ok || media == nil {
		return pipeline.KindText
	}
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		return pipeline.KindPhoto
	case *tg.MessageMediaWebPage:
		return pipeline.KindWebPage
	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return pipeline.KindDocument
		}
		return classifyDocument(doc)
	default:
		return pipeline.KindOther
	}
}

func classifyDocument(doc *tg.Document) pipeline.MediaKind {
	kind := pipeline.KindDocument
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeSticker:
			return pipeline.KindSticker
		case *tg.DocumentAttributeAnimated:
			return pipeline.KindAnimation
		case *tg.DocumentAttributeAudio:
			if a.Voice {
				return pipeline.KindVoice
			}
			kind = pipeline.KindAudio
		case *tg.DocumentAttributeVideo:
			kind = pipeline.KindVideo
		}
	}
	return kind
}
