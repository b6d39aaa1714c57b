package events

import (
	"context"
	"encoding/binary"
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
	"github.com/akab00m/dupclean/duplib"
)

// EventStream is a default implementation of the [duplib.EventStream]
// interface.
//
// EventStream manages a set of goroutines, observers. Main
// responsibility of the event stream is to route an event to relevant
// observer based on a chat id hash so each observer will have all events
// which belong to some chat.
//
// Thus, EventStream can spawn many observers.
type EventStream struct {
	ctx       context.Context
	ctxCancel context.CancelFunc
	chans     []chan duplib.Event

	// dropped is a pointer because EventStream has value receivers and
	// atomic.Uint64 must not be copied.
	dropped *atomic.Uint64
}

// Send delivers event to observer.
//
// EventChecked is emitted for every checked message, so it is dropped if
// observer is too slow: detection path must not wait for metrics. All
// other events are rare and delivered with blocking.
func (e EventStream) Send(ctx context.Context, evt duplib.Event) {
	var chanNo uint32

	if chatID := evt.ChatID(); chatID != 0 {
		var buf [8]byte

		binary.LittleEndian.PutUint64(buf[:], uint64(chatID))
		chanNo = xxhash.Checksum32(buf[:])
	} else {
		chanNo = rand.Uint32() //nolint: gosec
	}

	ch := e.chans[int(chanNo%uint32(len(e.chans)))]

	if _, isChecked := evt.(duplib.EventChecked); isChecked {
		select {
		case <-ctx.Done():
		case <-e.ctx.Done():
		case ch <- evt:
		default:
			e.dropped.Add(1)
		}

		return
	}

	select {
	case <-ctx.Done():
	case <-e.ctx.Done():
	case ch <- evt:
	}
}

// Dropped returns a number of dropped events since start.
func (e EventStream) Dropped() uint64 {
	return e.dropped.Load()
}

// Shutdown stops an event stream pipeline.
func (e EventStream) Shutdown() {
	e.ctxCancel()
}

// NewEventStream builds a new default event stream.
//
// If you give an empty array of observers, then NoopObserver is going
// to be used. If you give many observers, then they will process a
// message concurrently.
func NewEventStream(observerFactories []ObserverFactory) EventStream {
	if len(observerFactories) == 0 {
		observerFactories = append(observerFactories, NewNoopObserver)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rv := EventStream{
		ctx:       ctx,
		ctxCancel: cancel,
		chans:     make([]chan duplib.Event, runtime.NumCPU()),
		dropped:   &atomic.Uint64{},
	}

	for i := 0; i < runtime.NumCPU(); i++ {
		rv.chans[i] = make(chan duplib.Event, 64) //nolint: gomnd

		if len(observerFactories) == 1 {
			go eventStreamProcessor(ctx, rv.chans[i], observerFactories[0]())
		} else {
			go eventStreamProcessor(ctx, rv.chans[i], newMultiObserver(observerFactories))
		}
	}

	return rv
}

func eventStreamProcessor(ctx context.Context, eventChan <-chan duplib.Event, observer Observer) { //nolint: cyclop
	defer observer.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-eventChan:
			switch typedEvt := evt.(type) {
			case duplib.EventChecked:
				observer.EventChecked(typedEvt)
			case duplib.EventSkipped:
				observer.EventSkipped(typedEvt)
			case duplib.EventEvicted:
				observer.EventEvicted(typedEvt)
			case duplib.EventActivated:
				observer.EventActivated(typedEvt)
			case duplib.EventDeactivated:
				observer.EventDeactivated(typedEvt)
			case duplib.EventDeleted:
				observer.EventDeleted(typedEvt)
			case duplib.EventDeleteFailed:
				observer.EventDeleteFailed(typedEvt)
			case duplib.EventStoreSize:
				observer.EventStoreSize(typedEvt)
			}
		}
	}
}
