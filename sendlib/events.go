package sendlib

import (
	"net"
	"time"
)

type eventBase struct {
	streamID  string
	timestamp time.Time
}

// StreamID returns a ID of the stream this event belongs to.
func (e eventBase) StreamID() string {
	return e.streamID
}

// Timestamp return a time when this event was generated.
func (e eventBase) Timestamp() time.Time {
	return e.timestamp
}

// EventStart is emitted when a worker takes a new connection.
type EventStart struct {
	eventBase

	// RemoteIP is an IP address of the client.
	RemoteIP net.IP

	// Strategy is a transmission strategy this stream is going to use.
	Strategy Strategy
}

// EventTraffic is emitted periodically while a worker streams a message.
// Values are accumulated since the previous EventTraffic.
type EventTraffic struct {
	eventBase

	// Traffic is a count of bytes which were sent.
	Traffic uint

	// Syscalls is a count of send calls which moved these bytes.
	Syscalls uint
}

// EventZeroCopy is emitted when a worker observes zero-copy completions.
type EventZeroCopy struct {
	eventBase

	// Completed is a number of sends the kernel is done with.
	Completed uint64

	// Copied is a number of completed sends where the kernel decided to
	// copy data after all.
	Copied uint64
}

// EventBufferFailed is emitted when a worker cannot allocate a message.
// A connection is closed after that.
type EventBufferFailed struct {
	eventBase

	// Size is a requested message size.
	Size int
}

// EventFinish is emitted when we stop to manage a connection.
type EventFinish struct {
	eventBase

	// Reason is an error which has stopped streaming. It is nil if a server
	// was shut down.
	Reason error

	// BufferLeaked is set if kernel had kept references to the message
	// when we gave up waiting for completions.
	BufferLeaked bool
}

// EventConcurrencyLimited is emitted when connection was declined because of
// the concurrency limit of the worker pool.
type EventConcurrencyLimited struct {
	eventBase
}

// NewEventStart creates a new EventStart event.
func NewEventStart(streamID string, remoteIP net.IP, strategy Strategy) EventStart {
	return EventStart{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		RemoteIP: remoteIP,
		Strategy: strategy,
	}
}

// NewEventTraffic creates a new EventTraffic event.
func NewEventTraffic(streamID string, traffic, syscalls uint) EventTraffic {
	return EventTraffic{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		Traffic:  traffic,
		Syscalls: syscalls,
	}
}

// NewEventZeroCopy creates a new EventZeroCopy event.
func NewEventZeroCopy(streamID string, completed, copied uint64) EventZeroCopy {
	return EventZeroCopy{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		Completed: completed,
		Copied:    copied,
	}
}

// NewEventBufferFailed creates a new EventBufferFailed event.
func NewEventBufferFailed(streamID string, size int) EventBufferFailed {
	return EventBufferFailed{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		Size: size,
	}
}

// NewEventFinish creates a new EventFinish event.
func NewEventFinish(streamID string, reason error, bufferLeaked bool) EventFinish {
	return EventFinish{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		Reason:       reason,
		BufferLeaked: bufferLeaked,
	}
}

// NewEventConcurrencyLimited creates a new EventConcurrencyLimited
// event.
func NewEventConcurrencyLimited() EventConcurrencyLimited {
	return EventConcurrencyLimited{
		eventBase: eventBase{
			timestamp: time.Now(),
		},
	}
}
