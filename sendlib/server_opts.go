package sendlib

import (
	"time"

	"golang.org/x/time/rate"
)

// ZeroCopyOpts tune completion handling of zero-copy strategy. Other
// strategies ignore them.
type ZeroCopyOpts struct {
	// IgnoreCompletions disables reading of completions while streaming.
	// This is how naive MSG_ZEROCOPY programs behave: after some time the
	// kernel runs out of option memory and sends start to fail with
	// ErrCompletionBacklog.
	//
	// Completions are still collected before a buffer is released.
	//
	// This is an optional setting.
	IgnoreCompletions bool

	// MaxInFlight is a number of sends which may wait for completions. If
	// a worker has more, it stops sending and waits.
	//
	// This is an optional setting.
	MaxInFlight uint

	// PollTimeout is a single wait for completions when window is full.
	//
	// This is an optional setting.
	PollTimeout time.Duration

	// ReleaseTimeout is a time to wait for the last completions when
	// connection is closing. If kernel still references a buffer after
	// that, the buffer is leaked.
	//
	// This is an optional setting.
	ReleaseTimeout time.Duration
}

// ServerOpts is a structure with settings of the server.
type ServerOpts struct {
	// Strategy defines how messages are put on the wire.
	//
	// This is an optional setting, copying strategy by default.
	Strategy Strategy

	// MessageSize is a size of the message in bytes. It has to be divisible
	// by SegmentCount.
	//
	// This is an optional setting.
	MessageSize uint

	// Connections is a number of connections to accept. Server stops
	// accepting after that but keeps streaming.
	//
	// This is a mandatory setting.
	Connections uint

	// EventStream defines an instance of event stream.
	//
	// This ia a mandatory setting.
	EventStream EventStream

	// Logger defines an instance of the logger.
	//
	// This is a mandatory setting.
	Logger Logger

	// MaxRate limits a number of bytes per second for each connection.
	//
	// This is an optional setting, no limits by default.
	MaxRate uint

	// VerifyOnRelease checks that message contents were not changed
	// before it is released.
	//
	// This is an optional setting.
	VerifyOnRelease bool

	// Allocator overrides memory for messages.
	//
	// This is an optional setting, a strategy decides by default.
	Allocator Allocator

	ZeroCopy ZeroCopyOpts
}

func (s ServerOpts) valid() error {
	switch {
	case s.Connections == 0:
		return ErrConnectionsIsNotDefined
	case s.EventStream == nil:
		return ErrEventStreamIsNotDefined
	case s.Logger == nil:
		return ErrLoggerIsNotDefined
	case s.getMessageSize()%SegmentCount != 0:
		return ErrMessageSizeInvalid
	}

	return nil
}

func (s ServerOpts) getMessageSize() int {
	if s.MessageSize == 0 {
		return DefaultMessageSize
	}

	return int(s.MessageSize)
}

func (s ServerOpts) getLogger(name string) Logger {
	return s.Logger.Named(name)
}

func (s ServerOpts) getLimit() (rate.Limit, int) {
	if s.MaxRate == 0 {
		return rate.Inf, 0
	}

	return rate.Limit(s.MaxRate), max(int(s.MaxRate), s.getMessageSize())
}
