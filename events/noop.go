package events

import (
	"context"

	"github.com/akab00m/dupclean/duplib"
)

type noop struct{}

func (n noop) Send(_ context.Context, _ duplib.Event) {}

// NewNoopStream returns an event stream which drops everything.
func NewNoopStream() duplib.EventStream {
	return noop{}
}

type noopObserver struct{}

func (n noopObserver) EventChecked(_ duplib.EventChecked)           {}
func (n noopObserver) EventSkipped(_ duplib.EventSkipped)           {}
func (n noopObserver) EventEvicted(_ duplib.EventEvicted)           {}
func (n noopObserver) EventActivated(_ duplib.EventActivated)       {}
func (n noopObserver) EventDeactivated(_ duplib.EventDeactivated)   {}
func (n noopObserver) EventDeleted(_ duplib.EventDeleted)           {}
func (n noopObserver) EventDeleteFailed(_ duplib.EventDeleteFailed) {}
func (n noopObserver) EventStoreSize(_ duplib.EventStoreSize)       {}
func (n noopObserver) Shutdown()                                    {}

// NewNoopObserver returns an observer which does nothing.
func NewNoopObserver() Observer {
	return noopObserver{}
}
