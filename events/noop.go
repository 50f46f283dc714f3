package events

import (
	"context"

	"github.com/akab00m/zcbench/sendlib"
)

type noop struct{}

func (n noop) Send(_ context.Context, _ sendlib.Event) {}

// NewNoopStream creates a stream which discards each message.
func NewNoopStream() sendlib.EventStream {
	return noop{}
}

type noopObserver struct{}

func (n noopObserver) EventStart(_ sendlib.EventStart)                           {}
func (n noopObserver) EventTraffic(_ sendlib.EventTraffic)                       {}
func (n noopObserver) EventZeroCopy(_ sendlib.EventZeroCopy)                     {}
func (n noopObserver) EventBufferFailed(_ sendlib.EventBufferFailed)             {}
func (n noopObserver) EventFinish(_ sendlib.EventFinish)                         {}
func (n noopObserver) EventConcurrencyLimited(_ sendlib.EventConcurrencyLimited) {}
func (n noopObserver) Shutdown()                                                 {}

// NewNoopObserver creates an observer which does nothing.
func NewNoopObserver() Observer {
	return noopObserver{}
}
