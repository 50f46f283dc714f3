package events

import (
	"context"
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
	"github.com/akab00m/zcbench/sendlib"
)

const eventChanSize = 64

// EventStream is a default implementation of the [sendlib.EventStream]
// interface.
//
// EventStream manages a set of goroutines, observers. Main
// responsibility of the event stream is to route an event to relevant
// observer based on some hash so each observer will have all events
// which belong to some stream id.
//
// Thus, EventStream can spawn many observers.
type EventStream struct {
	ctx       context.Context
	ctxCancel context.CancelFunc
	chans     []chan sendlib.Event

	// pointer because EventStream has value receivers
	dropped *atomic.Uint64
}

// Send delivers event to observer.
//
// EventTraffic is sent by workers in a tight loop, so it is dropped if
// observer is busy. All other events are delivered with blocking.
func (e EventStream) Send(ctx context.Context, evt sendlib.Event) {
	var chanNo uint32

	if streamID := evt.StreamID(); streamID != "" {
		chanNo = xxhash.ChecksumString32(streamID)
	} else {
		chanNo = rand.Uint32()
	}

	ch := e.chans[int(chanNo)%len(e.chans)]

	if _, isTraffic := evt.(sendlib.EventTraffic); isTraffic {
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

// Dropped returns a number of traffic events lost because of overflow.
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
		chans:     make([]chan sendlib.Event, runtime.NumCPU()),
		dropped:   &atomic.Uint64{},
	}

	for i := range rv.chans {
		rv.chans[i] = make(chan sendlib.Event, eventChanSize)

		if len(observerFactories) == 1 {
			go eventStreamProcessor(ctx, rv.chans[i], observerFactories[0]())
		} else {
			go eventStreamProcessor(ctx, rv.chans[i], newMultiObserver(observerFactories))
		}
	}

	return rv
}

func eventStreamProcessor(ctx context.Context, eventChan <-chan sendlib.Event, observer Observer) {
	defer observer.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-eventChan:
			switch typedEvt := evt.(type) {
			case sendlib.EventTraffic:
				observer.EventTraffic(typedEvt)
			case sendlib.EventStart:
				observer.EventStart(typedEvt)
			case sendlib.EventFinish:
				observer.EventFinish(typedEvt)
			case sendlib.EventZeroCopy:
				observer.EventZeroCopy(typedEvt)
			case sendlib.EventBufferFailed:
				observer.EventBufferFailed(typedEvt)
			case sendlib.EventConcurrencyLimited:
				observer.EventConcurrencyLimited(typedEvt)
			}
		}
	}
}
