package duplib

import (
	"fmt"
	"strings"
)

// ContentType is a kind of message content which can be fingerprinted.
type ContentType uint8

const (
	// ContentUnknown marks messages we cannot check: service messages,
	// polls, locations and so on.
	ContentUnknown ContentType = iota
	ContentText
	ContentPhoto
	ContentVideo
	ContentAudio
	ContentVoice
	ContentDocument
	ContentSticker
	ContentAnimation
	ContentVideoNote
)

var contentTypeNames = [...]string{
	ContentUnknown:   "unknown",
	ContentText:      "text",
	ContentPhoto:     "photo",
	ContentVideo:     "video",
	ContentAudio:     "audio",
	ContentVoice:     "voice",
	ContentDocument:  "document",
	ContentSticker:   "sticker",
	ContentAnimation: "animation",
	ContentVideoNote: "video_note",
}

const contentTypeCount = len(contentTypeNames)

// ContentTypes lists every checkable content type in a stable order. It is
// used to pre-populate per-type counters.
func ContentTypes() []ContentType {
	return []ContentType{
		ContentText,
		ContentPhoto,
		ContentVideo,
		ContentAudio,
		ContentVoice,
		ContentDocument,
		ContentSticker,
		ContentAnimation,
		ContentVideoNote,
	}
}

func (c ContentType) String() string {
	if int(c) < len(contentTypeNames) {
		return contentTypeNames[c]
	}

	return contentTypeNames[ContentUnknown]
}

// IsMedia returns true for content types identified by a stable file id.
func (c ContentType) IsMedia() bool {
	return c > ContentText && int(c) < len(contentTypeNames)
}

// Valid returns true for content types we know how to fingerprint.
func (c ContentType) Valid() bool {
	return c != ContentUnknown && int(c) < len(contentTypeNames)
}

func (c ContentType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ContentType) UnmarshalText(data []byte) error {
	parsed, err := ParseContentType(string(data))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// ParseContentType is an inverse of ContentType.String.
func ParseContentType(value string) (ContentType, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	for i, name := range contentTypeNames {
		if i != int(ContentUnknown) && name == value {
			return ContentType(i), nil
		}
	}

	return ContentUnknown, fmt.Errorf("unknown content type %q", value)
}
