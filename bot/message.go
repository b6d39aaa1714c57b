package bot

import (
	"github.com/akab00m/dupclean/duplib"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// convertMessage builds a message descriptor from a Bot API message.
// Messages without recognized content get ContentUnknown, a detector skips
// them.
func convertMessage(msg *tgbotapi.Message) duplib.Message {
	rv := duplib.Message{
		MessageID:   msg.MessageID,
		Text:        msg.Text,
		Caption:     msg.Caption,
		IsForwarded: isForwarded(msg),
	}

	switch {
	case len(msg.Photo) > 0:
		photo := largestPhoto(msg.Photo)
		rv.ContentType = duplib.ContentPhoto
		rv.FileUniqueID = photo.FileUniqueID
		rv.FileID = photo.FileID
	case msg.Animation != nil:
		// animations also come with a document field, so they go first
		rv.ContentType = duplib.ContentAnimation
		rv.FileUniqueID = msg.Animation.FileUniqueID
		rv.FileID = msg.Animation.FileID
	case msg.Video != nil:
		rv.ContentType = duplib.ContentVideo
		rv.FileUniqueID = msg.Video.FileUniqueID
		rv.FileID = msg.Video.FileID
	case msg.VideoNote != nil:
		rv.ContentType = duplib.ContentVideoNote
		rv.FileUniqueID = msg.VideoNote.FileUniqueID
		rv.FileID = msg.VideoNote.FileID
	case msg.Audio != nil:
		rv.ContentType = duplib.ContentAudio
		rv.FileUniqueID = msg.Audio.FileUniqueID
		rv.FileID = msg.Audio.FileID
	case msg.Voice != nil:
		rv.ContentType = duplib.ContentVoice
		rv.FileUniqueID = msg.Voice.FileUniqueID
		rv.FileID = msg.Voice.FileID
	case msg.Document != nil:
		rv.ContentType = duplib.ContentDocument
		rv.FileUniqueID = msg.Document.FileUniqueID
		rv.FileID = msg.Document.FileID
	case msg.Sticker != nil:
		rv.ContentType = duplib.ContentSticker
		rv.FileUniqueID = msg.Sticker.FileUniqueID
		rv.FileID = msg.Sticker.FileID
	case msg.Text != "":
		rv.ContentType = duplib.ContentText
	}

	return rv
}

// isForwarded checks legacy forward_* fields only: tgbotapi has no
// forward_origin yet.
func isForwarded(msg *tgbotapi.Message) bool {
	return msg.ForwardFrom != nil ||
		msg.ForwardFromChat != nil ||
		msg.ForwardSenderName != "" ||
		msg.ForwardDate != 0
}

func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	rv := sizes[0]

	for _, size := range sizes[1:] {
		if size.Width*size.Height > rv.Width*rv.Height ||
			(size.Width*size.Height == rv.Width*rv.Height && size.FileSize > rv.FileSize) {
			rv = size
		}
	}

	return rv
}

// chatOf returns a chat of a message. Bot API always sends it, but
// tgbotapi keeps it as a pointer.
func chatOf(msg *tgbotapi.Message) (*tgbotapi.Chat, bool) {
	if msg == nil || msg.Chat == nil {
		return nil, false
	}

	return msg.Chat, true
}

func isSentByBot(msg *tgbotapi.Message) bool {
	return msg.From != nil && msg.From.IsBot && msg.From.ID != groupAnonymousBotID
}
