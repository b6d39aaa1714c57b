package duplib

// Message is a transport-independent descriptor of an incoming chat
// message. Transport layer has to fill it from whatever it receives.
type Message struct {
	// MessageID is an id of the message in its chat. It is never used for
	// fingerprinting, only to recognize redelivered updates.
	MessageID int

	// ContentType is a discriminant of the message content. If it is
	// ContentUnknown, fingerprinter infers ContentText for messages with
	// text.
	ContentType ContentType

	// Text is a body of a text message.
	Text string

	// Caption is a caption of a media message.
	Caption string

	// FileUniqueID is a content-stable file identifier. It is the same for
	// all forwards of the same file.
	FileUniqueID string

	// FileID is a per-delivery file identifier. It is carried for
	// completeness and never hashed: it differs between forwards.
	FileID string

	// IsForwarded is true if message has any forward-origin metadata.
	IsForwarded bool
}
