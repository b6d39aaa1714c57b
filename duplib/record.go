package duplib

import "time"

// Record is a first sighting of some content in a chat. Records are never
// mutated after insertion.
type Record struct {
	Fingerprint  Fingerprint
	FirstSeenAt  time.Time
	ContentType  ContentType
	WasForwarded bool

	// MessageID is an id of the message which brought this content first.
	MessageID int
}
