// Package sendlib streams a synthetic 8-segment message into accepted TCP
// connections using one of three transmission strategies: copying (a write
// per segment), vectorized (a single sendmsg) and zero-copy (sendmsg with
// MSG_ZEROCOPY).
//
// The main entity is a Server. It accepts a fixed number of connections and
// hands each of them to a worker from a bounded pool. A worker owns a
// connection and a message buffer for its whole life:
//
//	Accepted -> BufferBuilt -> Streaming -> Closing -> Done
//
// Closing always happens. For zero-copy strategy it also waits until the
// kernel reports that it does not reference message pages anymore. Buffers
// which are still referenced after a timeout are leaked, never freed.
package sendlib

import (
	"context"
	"errors"
	"time"

	"github.com/akab00m/zcbench/sendlib/internal/message"
	"github.com/akab00m/zcbench/sendlib/internal/strategy"
)

var (
	// ErrMessageSizeInvalid is returned if message cannot be split into equal
	// segments.
	ErrMessageSizeInvalid = errors.New("message size must be positive and divisible by 8")

	// ErrStrategyIsNotDefined is returned if strategy kind is unknown.
	ErrStrategyIsNotDefined = errors.New("strategy is not defined")

	// ErrEventStreamIsNotDefined is returned if event stream is not defined.
	ErrEventStreamIsNotDefined = errors.New("event stream is not defined")

	// ErrLoggerIsNotDefined is returned if logger is not defined.
	ErrLoggerIsNotDefined = errors.New("logger is not defined")

	// ErrConnectionsIsNotDefined is returned if connection target is 0.
	ErrConnectionsIsNotDefined = errors.New("connection target is not defined")

	// ErrCompletionBacklog is returned when zero-copy sends fail because
	// completions were not collected in time.
	ErrCompletionBacklog = strategy.ErrCompletionBacklog

	// ErrUnsupportedStrategy is returned for zero-copy outside of Linux.
	ErrUnsupportedStrategy = strategy.ErrUnsupported

	// ErrConnectionIsNotSocket is returned if a served connection gives no
	// access to its file descriptor.
	ErrConnectionIsNotSocket = errors.New("connection is not a socket")
)

const (
	// SegmentCount is a number of segments in every message.
	SegmentCount = message.SegmentCount

	// DefaultMaxInFlight is a default number of zero-copy sends which may
	// wait for completions.
	DefaultMaxInFlight = strategy.DefaultMaxInFlight

	// DefaultPollTimeout is a default time to wait for completions if
	// zero-copy window is full.
	DefaultPollTimeout = strategy.DefaultPollTimeout

	// DefaultReleaseTimeout is a default time to wait for the last
	// completions before a buffer is released.
	DefaultReleaseTimeout = strategy.DefaultReleaseTimeout

	// DefaultMessageSize is 100000 bytes per segment.
	DefaultMessageSize = 800000

	// DefaultConnections is a default connection target.
	DefaultConnections = 1
)

// Strategy is a transmission strategy.
type Strategy = strategy.Kind

const (
	StrategyCopy     = strategy.KindCopy
	StrategyVector   = strategy.KindVector
	StrategyZeroCopy = strategy.KindZeroCopy
)

// ParseStrategy parses a strategy name: copy, vector or zerocopy.
func ParseStrategy(value string) (Strategy, error) {
	return strategy.ParseKind(value) //nolint: wrapcheck
}

// SegmentMarker is a fill byte of the segment with a given index.
func SegmentMarker(index int) byte {
	return message.Marker(index)
}

// Allocator provides memory for message segments. Usually you do not need
// to set it: each strategy knows which memory it can work with.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte) error
}

// Event is a data structure which is populated during server runtime.
type Event interface {
	// StreamID returns an identifier of the stream this event belongs
	// to. It can be empty.
	StreamID() string

	// Timestamp returns a time when this event was generated.
	Timestamp() time.Time
}

// EventStream is an abstraction that accepts a set of events produced by
// the server.
//
// Please pay attention that Send is called from worker goroutines and can
// block a stream.
type EventStream interface {
	Send(ctx context.Context, evt Event)
}

// Logger defines an interface of the logger used by sendlib.
type Logger interface {
	Named(name string) Logger

	BindInt(name string, value int) Logger
	BindStr(name, value string) Logger

	Printf(format string, args ...interface{})

	Info(msg string)
	Warning(msg string)
	Debug(msg string)

	InfoError(msg string, err error)
	WarningError(msg string, err error)
	DebugError(msg string, err error)
}
