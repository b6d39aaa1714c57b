package duplib

import "context"

// Logger defines an interface of the logger used by dupclean.
//
// Printf is here only to satisfy ants.Logger, so the same logger can be
// given to a worker pool.
type Logger interface {
	Named(name string) Logger

	BindInt(name string, value int) Logger
	BindInt64(name string, value int64) Logger
	BindStr(name, value string) Logger

	Printf(format string, args ...interface{})
	Info(msg string)
	InfoError(msg string, err error)
	Warning(msg string)
	WarningError(msg string, err error)
	Debug(msg string)
	DebugError(msg string, err error)
}

// Event is a data structure which is sent to an EventStream.
type Event interface {
	// ChatID returns an id of the chat this event belongs to. 0 means that
	// event is not bound to any chat.
	ChatID() int64
}

// EventStream is an abstraction which accepts a set of events produced by
// a detector and a transport.
//
// Send must not block a detection path for long. Default implementation
// lives in the events package.
type EventStream interface {
	Send(ctx context.Context, evt Event)
}

// ActivationRecorder is notified when a set of active chats changes.
// StatsAggregator implements it. Methods are called under a registry lock,
// so they have to be quick and must not call the registry back.
type ActivationRecorder interface {
	RecordActivation(chatID int64, reason ActivationReason)
	RecordDeactivation(chatID int64)
}
