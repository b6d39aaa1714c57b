package events

import "github.com/akab00m/dupclean/duplib"

// Observer is an instance which processes events of an event stream.
//
// Each observer works in its own goroutine and receives all events of
// some subset of chats, so it is safe to keep per-chat state in it
// without locking.
type Observer interface {
	EventChecked(duplib.EventChecked)
	EventSkipped(duplib.EventSkipped)
	EventEvicted(duplib.EventEvicted)
	EventActivated(duplib.EventActivated)
	EventDeactivated(duplib.EventDeactivated)
	EventDeleted(duplib.EventDeleted)
	EventDeleteFailed(duplib.EventDeleteFailed)
	EventStoreSize(duplib.EventStoreSize)

	Shutdown()
}

// ObserverFactory creates a new observer for each goroutine of an event
// stream.
type ObserverFactory func() Observer
