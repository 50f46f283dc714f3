package events

import "github.com/akab00m/zcbench/sendlib"

// Observer is an instance that listens for the incoming events.
//
// Each observer is bound to a single goroutine of EventStream, so it does
// not need any synchronization.
type Observer interface {
	EventStart(sendlib.EventStart)
	EventTraffic(sendlib.EventTraffic)
	EventZeroCopy(sendlib.EventZeroCopy)
	EventBufferFailed(sendlib.EventBufferFailed)
	EventFinish(sendlib.EventFinish)
	EventConcurrencyLimited(sendlib.EventConcurrencyLimited)

	Shutdown()
}

// ObserverFactory creates a new observer for each goroutine of the
// stream.
type ObserverFactory func() Observer
