package duplib

// Status is a classification of a checked message.
type Status uint8

const (
	// StatusNew means content was never seen in this chat (within
	// retention). It is stored now.
	StatusNew Status = iota

	// StatusDuplicate means content was seen before. It is safe to delete
	// the message.
	StatusDuplicate

	// StatusSkipped means message was not checked. See SkipReason.
	StatusSkipped

	// StatusChatInactive means that detection is not enabled in this chat.
	// Caller has to do nothing.
	StatusChatInactive
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusDuplicate:
		return "duplicate"
	case StatusSkipped:
		return "skipped"
	case StatusChatInactive:
		return "chat_inactive"
	}

	return "unknown"
}

// SkipReason explains why a message was skipped.
type SkipReason uint8

const (
	SkipNone SkipReason = iota
	// SkipUnsupported means message has no checkable content.
	SkipUnsupported
	// SkipRedelivery means this exact message was already checked: the
	// transport got the same update twice.
	SkipRedelivery
)

func (s SkipReason) String() string {
	switch s {
	case SkipUnsupported:
		return "unsupported"
	case SkipRedelivery:
		return "redelivery"
	case SkipNone:
	}

	return "none"
}

// ActivationReason tells how a chat was activated.
type ActivationReason uint8

const (
	// ActivationManual is an activation by /startbot command.
	ActivationManual ActivationReason = iota
	// ActivationAuto is an activation when the bot was promoted to admin.
	ActivationAuto
)

func (a ActivationReason) String() string {
	if a == ActivationAuto {
		return "auto"
	}

	return "manual"
}

// Verdict is a result of Detector.Check.
type Verdict struct {
	Status       Status
	ContentType  ContentType
	WasForwarded bool
	Fingerprint  Fingerprint
	SkipReason   SkipReason
}

// IsDuplicate returns true only for StatusDuplicate. Transport layer may
// delete a message only if this is true.
func (v Verdict) IsDuplicate() bool {
	return v.Status == StatusDuplicate
}
