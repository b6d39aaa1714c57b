package duplib

import "time"

type eventBase struct {
	chatID    int64
	timestamp time.Time
}

// ChatID returns an id of the chat this event belongs to.
func (e eventBase) ChatID() int64 {
	return e.chatID
}

// Timestamp return a time when this event was generated.
func (e eventBase) Timestamp() time.Time {
	return e.timestamp
}

// EventChecked is emitted when a checkable message of an active chat was
// processed by a detector.
type EventChecked struct {
	eventBase

	ContentType  ContentType
	WasForwarded bool
	IsDuplicate  bool

	// Duration is a time spent in detection: fingerprinting, waiting for a
	// chat lock and store access.
	Duration time.Duration
}

// EventSkipped is emitted when a message of an active chat could not be
// checked.
type EventSkipped struct {
	eventBase

	Reason SkipReason
}

// EventEvicted is emitted when records are pushed out of a full chat store.
type EventEvicted struct {
	eventBase

	Count int
}

// EventActivated is emitted when a chat becomes active.
type EventActivated struct {
	eventBase

	Reason ActivationReason
}

// EventDeactivated is emitted when a chat becomes inactive and its store is
// dropped.
type EventDeactivated struct {
	eventBase

	// DroppedRecords is a number of records the store had.
	DroppedRecords int
}

// EventDeleted is emitted by a transport when it has successfully deleted
// a duplicate.
type EventDeleted struct {
	eventBase

	ContentType ContentType
}

// EventDeleteFailed is emitted by a transport when it could not delete a
// duplicate.
type EventDeleteFailed struct {
	eventBase

	// Reason is a short machine-friendly reason: rate_limited,
	// cannot_delete, no_rights, overload, other.
	Reason string
}

// EventStoreSize is emitted periodically with memory statistics of all
// chat stores.
type EventStoreSize struct {
	eventBase

	ActiveChats  int
	TotalEntries int
	LargestChat  int
}

// NewEventChecked creates a new EventChecked event.
func NewEventChecked(chatID int64, verdict Verdict, duration time.Duration) EventChecked {
	return EventChecked{
		eventBase: eventBase{
			chatID:    chatID,
			timestamp: time.Now(),
		},
		ContentType:  verdict.ContentType,
		WasForwarded: verdict.WasForwarded,
		IsDuplicate:  verdict.IsDuplicate(),
		Duration:     duration,
	}
}

// NewEventSkipped creates a new EventSkipped event.
func NewEventSkipped(chatID int64, reason SkipReason) EventSkipped {
	return EventSkipped{
		eventBase: eventBase{
			chatID:    chatID,
			timestamp: time.Now(),
		},
		Reason: reason,
	}
}

// NewEventEvicted creates a new EventEvicted event.
func NewEventEvicted(chatID int64, count int) EventEvicted {
	return EventEvicted{
		eventBase: eventBase{
			chatID:    chatID,
			timestamp: time.Now(),
		},
		Count: count,
	}
}

// NewEventActivated creates a new EventActivated event.
func NewEventActivated(chatID int64, reason ActivationReason) EventActivated {
	return EventActivated{
		eventBase: eventBase{
			chatID:    chatID,
			timestamp: time.Now(),
		},
		Reason: reason,
	}
}

// NewEventDeactivated creates a new EventDeactivated event.
func NewEventDeactivated(chatID int64, droppedRecords int) EventDeactivated {
	return EventDeactivated{
		eventBase: eventBase{
			chatID:    chatID,
			timestamp: time.Now(),
		},
		DroppedRecords: droppedRecords,
	}
}

// NewEventDeleted creates a new EventDeleted event.
func NewEventDeleted(chatID int64, contentType ContentType) EventDeleted {
	return EventDeleted{
		eventBase: eventBase{
			chatID:    chatID,
			timestamp: time.Now(),
		},
		ContentType: contentType,
	}
}

// NewEventDeleteFailed creates a new EventDeleteFailed event.
func NewEventDeleteFailed(chatID int64, reason string) EventDeleteFailed {
	return EventDeleteFailed{
		eventBase: eventBase{
			chatID:    chatID,
			timestamp: time.Now(),
		},
		Reason: reason,
	}
}

// NewEventStoreSize creates a new EventStoreSize event.
func NewEventStoreSize(mem MemoryStats) EventStoreSize {
	return EventStoreSize{
		eventBase: eventBase{
			timestamp: time.Now(),
		},
		ActiveChats:  mem.ActiveChats,
		TotalEntries: mem.TotalEntries,
		LargestChat:  mem.LargestChat,
	}
}
