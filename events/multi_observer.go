package events

import (
	"sync"

	"github.com/akab00m/dupclean/duplib"
)

type multiObserver struct {
	observers []Observer
}

func (m multiObserver) EventChecked(evt duplib.EventChecked) {
	m.broadcast(func(o Observer) { o.EventChecked(evt) })
}

func (m multiObserver) EventSkipped(evt duplib.EventSkipped) {
	m.broadcast(func(o Observer) { o.EventSkipped(evt) })
}

func (m multiObserver) EventEvicted(evt duplib.EventEvicted) {
	m.broadcast(func(o Observer) { o.EventEvicted(evt) })
}

func (m multiObserver) EventActivated(evt duplib.EventActivated) {
	m.broadcast(func(o Observer) { o.EventActivated(evt) })
}

func (m multiObserver) EventDeactivated(evt duplib.EventDeactivated) {
	m.broadcast(func(o Observer) { o.EventDeactivated(evt) })
}

func (m multiObserver) EventDeleted(evt duplib.EventDeleted) {
	m.broadcast(func(o Observer) { o.EventDeleted(evt) })
}

func (m multiObserver) EventDeleteFailed(evt duplib.EventDeleteFailed) {
	m.broadcast(func(o Observer) { o.EventDeleteFailed(evt) })
}

func (m multiObserver) EventStoreSize(evt duplib.EventStoreSize) {
	m.broadcast(func(o Observer) { o.EventStoreSize(evt) })
}

func (m multiObserver) Shutdown() {
	for _, v := range m.observers {
		v.Shutdown()
	}
}

func (m multiObserver) broadcast(callback func(Observer)) {
	wg := &sync.WaitGroup{}
	wg.Add(len(m.observers))

	for _, v := range m.observers {
		go func(obs Observer) {
			defer wg.Done()

			callback(obs)
		}(v)
	}

	wg.Wait()
}

func newMultiObserver(observers []ObserverFactory) Observer {
	rv := multiObserver{
		observers: make([]Observer, len(observers)),
	}

	for i, v := range observers {
		rv.observers[i] = v()
	}

	return rv
}
